package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/mitchellh/mapstructure"
)

// Request is a blank interface for the command request definitions.
type Request interface{}

// BotFunctionI is the common interface for all subcommands.
type BotFunctionI interface {
	GetName() string
	GetDescription() string
	GetRequestPrototype() Request
	// HandleInteraction decodes the subcommand's options into a request struct and calls the handler.
	// A nil response means the handler has already replied.
	HandleInteraction(inv *Invocation, options []*discordgo.ApplicationCommandInteractionDataOption) (*discordgo.InteractionResponseData, error)
}

// Handler processes a decoded request. Returned data is sent as the reply,
// or as an edit of the reply if the handler already sent one.
type Handler[T Request] func(inv *Invocation, req T) (*discordgo.InteractionResponseData, error)

// GenericBotFunction is a generic implementation of BotFunctionI.
type GenericBotFunction[T Request] struct {
	// Name is the subcommand name.
	Name        string
	Description string
	// RequestPrototype is an instance of the request type (typically the zero value)
	// used for reflection to generate command options.
	RequestPrototype T
	// Handler is the function to execute for the command.
	Handler Handler[T]
}

// GetName returns the command's name.
func (bf *GenericBotFunction[T]) GetName() string {
	return bf.Name
}

// GetDescription returns the command's description.
func (bf *GenericBotFunction[T]) GetDescription() string {
	return bf.Description
}

// GetRequestPrototype returns the command's request prototype.
func (bf *GenericBotFunction[T]) GetRequestPrototype() Request {
	return bf.RequestPrototype
}

// HandleInteraction processes the interaction by constructing a request of type T from the options
// and then invoking the handler. It decodes the options using mapstructure and then applies any defaults.
func (bf *GenericBotFunction[T]) HandleInteraction(inv *Invocation, options []*discordgo.ApplicationCommandInteractionDataOption) (*discordgo.InteractionResponseData, error) {
	req, err := decodeOptions[T](options)
	if err != nil {
		return nil, fmt.Errorf("failed to decode options for %s: %w", bf.Name, err)
	}
	return bf.Handler(inv, req)
}

func decodeOptions[T Request](options []*discordgo.ApplicationCommandInteractionDataOption) (T, error) {
	var req T

	// Build a map from option name to its value.
	optsMap := make(map[string]interface{}, len(options))
	for _, opt := range options {
		optsMap[opt.Name] = opt.Value
	}

	// Decode into req using mapstructure with our custom tag.
	decoderConfig := mapstructure.DecoderConfig{
		TagName:          "discord",
		Result:           &req,
		WeaklyTypedInput: true, // helps convert numbers and booleans automatically.
	}
	decoder, err := mapstructure.NewDecoder(&decoderConfig)
	if err != nil {
		return req, err
	}
	if err := decoder.Decode(optsMap); err != nil {
		return req, err
	}

	// Set default values on fields that are still zero.
	if err := setDefaults(&req); err != nil {
		return req, err
	}
	return req, nil
}

// NewBotFunction creates a subcommand handler. The request struct T defines the
// subcommand's options; each field becomes one option. The "discord" struct tag
// starts with the option name (the lowercased field name when empty) followed by:
//
//   - optional:    Marks the option as not required.
//   - description: Overrides the auto-generated option description.
//   - type:        "channel" makes the option a text channel picker.
//   - choices:     A semicolon-separated list of choices in the format "value|Label".
//   - default:     A default value assigned when the option is absent.
func NewBotFunction[T Request](name, description string, handler Handler[T]) BotFunctionI {
	var reqPrototype T
	return &GenericBotFunction[T]{
		Name:             name,
		Description:      description,
		RequestPrototype: reqPrototype,
		Handler:          handler,
	}
}

// BotCommand is a top level slash command made up of subcommands.
type BotCommand struct {
	Name        string
	Description string
	// DefaultMemberPermissions limits who sees the command in the client.
	// It is a display hint only; handlers enforce permissions themselves.
	DefaultMemberPermissions *int64
	Subcommands              []BotFunctionI
}

// NewBotCommand creates a command group.
func NewBotCommand(name, description string, subcommands ...BotFunctionI) *BotCommand {
	return &BotCommand{
		Name:        name,
		Description: description,
		Subcommands: subcommands,
	}
}

// WithDefaultPermissions sets the default member permissions for the command.
func (c *BotCommand) WithDefaultPermissions(perms int64) *BotCommand {
	c.DefaultMemberPermissions = &perms
	return c
}

// subcommand returns the subcommand with the given name, or nil.
func (c *BotCommand) subcommand(name string) BotFunctionI {
	for _, fn := range c.Subcommands {
		if fn.GetName() == name {
			return fn
		}
	}
	return nil
}

// applicationCommand builds the Discord command definition.
func (c *BotCommand) applicationCommand() (*discordgo.ApplicationCommand, error) {
	cmd := &discordgo.ApplicationCommand{
		Name:                     c.Name,
		Description:              c.Description,
		Type:                     discordgo.ChatApplicationCommand,
		DefaultMemberPermissions: c.DefaultMemberPermissions,
	}
	for _, fn := range c.Subcommands {
		options, err := structToCommandOptions(fn.GetRequestPrototype())
		if err != nil {
			return nil, fmt.Errorf("failed to generate options for %s %s: %w", c.Name, fn.GetName(), err)
		}
		description := fn.GetDescription()
		if description == "" {
			description = "Auto-generated command for " + fn.GetName()
		}
		cmd.Options = append(cmd.Options, &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        fn.GetName(),
			Description: description,
			Options:     options,
		})
	}
	return cmd, nil
}
