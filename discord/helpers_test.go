package discord

import (
	"reflect"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type optionsRequest struct {
	Prompt  string  `discord:"prompt,description:What to draw"`
	Channel string  `discord:"channel,type:channel"`
	Count   int     `discord:"count,optional,default:3"`
	Scale   float64 `discord:",optional"`
	Style   string  `discord:"style,optional,choices:vivid|Vivid;natural|Natural,default:natural"`
	Private bool    `discord:"private,optional"`
	hidden  string
}

func TestParseDiscordTag(t *testing.T) {
	ot := parseDiscordTag("prompt, optional ,description:Some: text,default:x")
	assert.Equal(t, optionTag{
		name:        "prompt",
		optional:    true,
		description: "Some: text",
		def:         "x",
		hasDefault:  true,
	}, ot)

	ot = parseDiscordTag(",optional,type:channel")
	assert.Empty(t, ot.name)
	assert.True(t, ot.optional)
	assert.Equal(t, "channel", ot.kind)

	assert.Equal(t, optionTag{}, parseDiscordTag(""))
}

func TestParseChoices(t *testing.T) {
	choices, err := parseChoices("a|Apple; b ;", reflect.TypeOf(""))
	require.NoError(t, err)
	require.Len(t, choices, 2)
	assert.Equal(t, "Apple", choices[0].Name)
	assert.Equal(t, "a", choices[0].Value)
	assert.Equal(t, "b", choices[1].Name)

	choices, err = parseChoices("1|One;2|Two", reflect.TypeOf(0))
	require.NoError(t, err)
	assert.Equal(t, 2, choices[1].Value)

	_, err = parseChoices("x|Ex", reflect.TypeOf(0))
	assert.Error(t, err)
}

func TestStructToCommandOptions(t *testing.T) {
	opts, err := structToCommandOptions(optionsRequest{})
	require.NoError(t, err)
	require.Len(t, opts, 6)

	byName := map[string]*discordgo.ApplicationCommandOption{}
	for _, o := range opts {
		byName[o.Name] = o
	}

	prompt := byName["prompt"]
	require.NotNil(t, prompt)
	assert.Equal(t, discordgo.ApplicationCommandOptionString, prompt.Type)
	assert.True(t, prompt.Required)
	assert.Equal(t, "What to draw", prompt.Description)

	channel := byName["channel"]
	require.NotNil(t, channel)
	assert.Equal(t, discordgo.ApplicationCommandOptionChannel, channel.Type)
	assert.Equal(t, []discordgo.ChannelType{discordgo.ChannelTypeGuildText}, channel.ChannelTypes)
	assert.Equal(t, "Auto-generated option for channel", channel.Description)

	count := byName["count"]
	require.NotNil(t, count)
	assert.Equal(t, discordgo.ApplicationCommandOptionInteger, count.Type)
	assert.False(t, count.Required)

	scale := byName["scale"]
	require.NotNil(t, scale)
	assert.Equal(t, discordgo.ApplicationCommandOptionNumber, scale.Type)

	assert.Len(t, byName["style"].Choices, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionBoolean, byName["private"].Type)
}

func TestStructToCommandOptionsErrors(t *testing.T) {
	_, err := structToCommandOptions(nil)
	assert.Error(t, err)

	_, err = structToCommandOptions("not a struct")
	assert.Error(t, err)

	type badChannel struct {
		Channel int `discord:"channel,type:channel"`
	}
	_, err = structToCommandOptions(badChannel{})
	assert.Error(t, err)

	type unknownType struct {
		User string `discord:"user,type:user"`
	}
	_, err = structToCommandOptions(unknownType{})
	assert.Error(t, err)

	opts, err := structToCommandOptions(&struct{}{})
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestDecodeOptions(t *testing.T) {
	req, err := decodeOptions[optionsRequest]([]*discordgo.ApplicationCommandInteractionDataOption{
		{Name: "prompt", Type: discordgo.ApplicationCommandOptionString, Value: "a cat"},
		{Name: "channel", Type: discordgo.ApplicationCommandOptionChannel, Value: "123"},
		// Discord sends integers as JSON numbers.
		{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(5)},
	})
	require.NoError(t, err)

	assert.Equal(t, "a cat", req.Prompt)
	assert.Equal(t, "123", req.Channel)
	assert.Equal(t, 5, req.Count)
	assert.Equal(t, "natural", req.Style)
	assert.False(t, req.Private)
}

func TestDecodeOptionsDefaults(t *testing.T) {
	req, err := decodeOptions[optionsRequest](nil)
	require.NoError(t, err)

	assert.Equal(t, 3, req.Count)
	assert.Equal(t, "natural", req.Style)
	assert.Empty(t, req.Prompt)
}

func TestApplicationCommand(t *testing.T) {
	cmd := NewBotCommand("image", "Image commands",
		NewBotFunction("generate", "Generate an image", func(inv *Invocation, req optionsRequest) (*discordgo.InteractionResponseData, error) {
			return nil, nil
		}),
		NewBotFunction("noop", "", func(inv *Invocation, req struct{}) (*discordgo.InteractionResponseData, error) {
			return nil, nil
		}),
	).WithDefaultPermissions(discordgo.PermissionViewChannel)

	appCmd, err := cmd.applicationCommand()
	require.NoError(t, err)

	assert.Equal(t, "image", appCmd.Name)
	require.NotNil(t, appCmd.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionViewChannel), *appCmd.DefaultMemberPermissions)
	require.Len(t, appCmd.Options, 2)
	assert.Equal(t, discordgo.ApplicationCommandOptionSubCommand, appCmd.Options[0].Type)
	assert.Equal(t, "generate", appCmd.Options[0].Name)
	assert.Len(t, appCmd.Options[0].Options, 6)
	assert.Equal(t, "Auto-generated command for noop", appCmd.Options[1].Description)

	assert.NotNil(t, cmd.subcommand("generate"))
	assert.Nil(t, cmd.subcommand("missing"))
}
