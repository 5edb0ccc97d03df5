package routing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/brensch/llamabot/imagegen"
	"github.com/brensch/llamabot/render"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	prompts []string
	answer  string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) string {
	f.prompts = append(f.prompts, prompt)
	return f.answer
}

type fakeGenerator struct {
	prompts []string
	img     *imagegen.Image
	err     error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (*imagegen.Image, error) {
	f.prompts = append(f.prompts, prompt)
	return f.img, f.err
}

type sent struct {
	id         string
	embed      *discordgo.MessageEmbed
	components []discordgo.MessageComponent
}

type fakeOutbox struct {
	replies  []sent
	edits    []sent
	replyErr error
}

func (f *fakeOutbox) Reply(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) (string, error) {
	if f.replyErr != nil {
		return "", f.replyErr
	}
	id := fmt.Sprintf("reply-%d", len(f.replies))
	f.replies = append(f.replies, sent{id: id, embed: embed, components: components})
	return id, nil
}

func (f *fakeOutbox) Edit(messageID string, embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	f.edits = append(f.edits, sent{id: messageID, embed: embed, components: components})
	return nil
}

func newTestRouter(store *Store, completer *fakeCompleter, generator *fakeGenerator) *Router {
	r := render.Renderer{
		SuccessColor: render.DefaultSuccessColor,
		ErrorColor:   render.DefaultErrorColor,
		InviteURL:    "https://invite.example",
		SupportURL:   "https://support.example",
	}
	return NewRouter(store, completer, generator, r)
}

var author = &discordgo.User{ID: "u1", Username: "alice"}

func TestRouteIgnoresUnroutedChannels(t *testing.T) {
	store := NewStore()
	store.Set("G1", KindAI, "general")
	completer := &fakeCompleter{answer: "hi"}
	generator := &fakeGenerator{}
	out := &fakeOutbox{}

	router := newTestRouter(store, completer, generator)

	_, handled := router.Route(context.Background(), Message{GuildID: "G1", ChannelID: "random", Content: "hello", Author: author}, out)
	assert.False(t, handled)

	_, handled = router.Route(context.Background(), Message{ChannelID: "general", Content: "hello", Author: author}, out)
	assert.False(t, handled)

	assert.Empty(t, completer.prompts)
	assert.Empty(t, generator.prompts)
	assert.Empty(t, out.replies)
}

func TestRouteAI(t *testing.T) {
	store := NewStore()
	store.Set("G1", KindAI, "general")
	completer := &fakeCompleter{answer: "The capital is Paris."}
	out := &fakeOutbox{}

	kind, handled := newTestRouter(store, completer, &fakeGenerator{}).
		Route(context.Background(), Message{GuildID: "G1", ChannelID: "general", Content: "capital of France?", Author: author}, out)

	require.True(t, handled)
	assert.Equal(t, KindAI, kind)
	assert.Equal(t, []string{"capital of France?"}, completer.prompts)
	require.Len(t, out.replies, 1)
	assert.Equal(t, "The capital is Paris.", out.replies[0].embed.Description)
	assert.Equal(t, "Requested by: alice", out.replies[0].embed.Footer.Text)
	assert.Empty(t, out.edits)
}

func TestRouteAITakesPrecedence(t *testing.T) {
	store := NewStore()
	store.Set("G1", KindAI, "shared")
	store.Set("G1", KindImage, "shared")
	completer := &fakeCompleter{answer: "text"}
	generator := &fakeGenerator{img: &imagegen.Image{URL: "https://img"}}
	out := &fakeOutbox{}

	kind, handled := newTestRouter(store, completer, generator).
		Route(context.Background(), Message{GuildID: "G1", ChannelID: "shared", Content: "a cat", Author: author}, out)

	require.True(t, handled)
	assert.Equal(t, KindAI, kind)
	assert.Len(t, completer.prompts, 1)
	assert.Empty(t, generator.prompts)
}

func TestRouteImageEditsPlaceholderOnce(t *testing.T) {
	store := NewStore()
	store.Set("G1", KindImage, "art")
	generator := &fakeGenerator{img: &imagegen.Image{URL: "https://img/cat.png", ImageID: "42", Status: "done"}}
	out := &fakeOutbox{}

	kind, handled := newTestRouter(store, &fakeCompleter{}, generator).
		Route(context.Background(), Message{GuildID: "G1", ChannelID: "art", Content: "a cat", Author: author}, out)

	require.True(t, handled)
	assert.Equal(t, KindImage, kind)
	assert.Equal(t, []string{"a cat"}, generator.prompts)

	require.Len(t, out.replies, 1)
	assert.Equal(t, "⏳ Generating Image...", out.replies[0].embed.Title)

	require.Len(t, out.edits, 1)
	edit := out.edits[0]
	assert.Equal(t, out.replies[0].id, edit.id)
	assert.Equal(t, "🎨 Image Generate", edit.embed.Title)
	require.NotNil(t, edit.embed.Image)
	assert.Equal(t, "https://img/cat.png", edit.embed.Image.URL)
	assert.Contains(t, edit.embed.Fields[0].Value, "**imageId:** 42")
	assert.Contains(t, edit.embed.Fields[0].Value, "**duration:** N/A")
	assert.Len(t, edit.components, 1)
}

func TestRouteImageFailureEditsError(t *testing.T) {
	store := NewStore()
	store.Set("G1", KindImage, "art")
	generator := &fakeGenerator{err: errors.New("upstream down")}
	out := &fakeOutbox{}

	_, handled := newTestRouter(store, &fakeCompleter{}, generator).
		Route(context.Background(), Message{GuildID: "G1", ChannelID: "art", Content: "a cat", Author: author}, out)

	require.True(t, handled)
	require.Len(t, out.replies, 1)
	require.Len(t, out.edits, 1)
	assert.Equal(t, "❌ Error", out.edits[0].embed.Title)
	assert.Contains(t, out.edits[0].embed.Description, "automatically")
	assert.Equal(t, render.DefaultErrorColor, out.edits[0].embed.Color)
	assert.Nil(t, out.edits[0].components)
}

func TestRouteImagePlaceholderFailure(t *testing.T) {
	store := NewStore()
	store.Set("G1", KindImage, "art")
	generator := &fakeGenerator{img: &imagegen.Image{URL: "https://img"}}
	out := &fakeOutbox{replyErr: errors.New("missing access")}

	_, handled := newTestRouter(store, &fakeCompleter{}, generator).
		Route(context.Background(), Message{GuildID: "G1", ChannelID: "art", Content: "a cat", Author: author}, out)

	assert.True(t, handled)
	assert.Empty(t, generator.prompts)
	assert.Empty(t, out.edits)
}
