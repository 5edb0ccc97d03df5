package discord

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// optionTag is a parsed `discord` struct tag, for example
// `discord:"channel,type:channel,description:Where to post"`.
type optionTag struct {
	name        string
	optional    bool
	description string
	kind        string
	choices     string
	def         string
	hasDefault  bool
}

// parseDiscordTag reads the option name from the first element and the
// remaining key or key:value flags from the rest.
func parseDiscordTag(tag string) optionTag {
	parts := strings.Split(tag, ",")
	ot := optionTag{name: strings.TrimSpace(parts[0])}
	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(part), ":")
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "optional":
			ot.optional = true
		case "description":
			ot.description = value
		case "type":
			ot.kind = value
		case "choices":
			ot.choices = value
		case "default":
			ot.def = value
			ot.hasDefault = value != ""
		}
	}
	return ot
}

// optionType maps a field's Go kind to a Discord option type.
func optionType(t reflect.Type) discordgo.ApplicationCommandOptionType {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return discordgo.ApplicationCommandOptionInteger
	case reflect.Float32, reflect.Float64:
		return discordgo.ApplicationCommandOptionNumber
	case reflect.Bool:
		return discordgo.ApplicationCommandOptionBoolean
	default:
		return discordgo.ApplicationCommandOptionString
	}
}

// parseChoices reads "value|Label;value|Label". Values are converted to the
// field's type so integer options get numeric choices.
func parseChoices(s string, t reflect.Type) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		raw, label, ok := strings.Cut(pair, "|")
		if !ok {
			label = raw
		}
		value, err := parseValue(raw, t)
		if err != nil {
			return nil, fmt.Errorf("bad choice %q: %w", raw, err)
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  label,
			Value: value.Interface(),
		})
	}
	return choices, nil
}

// parseValue converts a tag string to a value of type t.
func parseValue(val string, t reflect.Type) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.String:
		return reflect.ValueOf(val).Convert(t), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(val, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(i).Convert(t), nil
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(val, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Bool:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b).Convert(t), nil
	default:
		return reflect.Value{}, fmt.Errorf("unsupported option type %s", t.Kind())
	}
}

// setDefaults fills zero fields of the struct req points to from their
// tag defaults.
func setDefaults(req interface{}) error {
	v := reflect.ValueOf(req)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("setDefaults: req is not a pointer to struct")
	}
	v = v.Elem()

	for i := 0; i < v.NumField(); i++ {
		field := v.Type().Field(i)
		fv := v.Field(i)
		if !fv.CanSet() || !fv.IsZero() {
			continue
		}
		ot := parseDiscordTag(field.Tag.Get("discord"))
		if !ot.hasDefault {
			continue
		}
		def, err := parseValue(ot.def, field.Type)
		if err != nil {
			return fmt.Errorf("bad default for %s: %w", field.Name, err)
		}
		fv.Set(def)
	}
	return nil
}

// structToCommandOptions builds the option list for a subcommand from its
// request struct. Every exported field is one option.
func structToCommandOptions(req Request) ([]*discordgo.ApplicationCommandOption, error) {
	t := reflect.TypeOf(req)
	if t == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("request is not a struct")
	}

	var options []*discordgo.ApplicationCommandOption
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		opt, err := fieldOption(field)
		if err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, nil
}

func fieldOption(field reflect.StructField) (*discordgo.ApplicationCommandOption, error) {
	ot := parseDiscordTag(field.Tag.Get("discord"))
	if ot.name == "" {
		ot.name = strings.ToLower(field.Name)
	}
	if ot.description == "" {
		ot.description = "Auto-generated option for " + ot.name
	}

	opt := &discordgo.ApplicationCommandOption{
		Type:        optionType(field.Type),
		Name:        ot.name,
		Description: ot.description,
		Required:    !ot.optional,
	}

	switch ot.kind {
	case "":
	case "channel":
		// Channel options resolve to the channel's ID.
		if field.Type.Kind() != reflect.String {
			return nil, fmt.Errorf("channel option %s must be a string field", ot.name)
		}
		opt.Type = discordgo.ApplicationCommandOptionChannel
		opt.ChannelTypes = []discordgo.ChannelType{discordgo.ChannelTypeGuildText}
	default:
		return nil, fmt.Errorf("option %s has unknown type %q", ot.name, ot.kind)
	}

	if ot.choices != "" {
		choices, err := parseChoices(ot.choices, field.Type)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", ot.name, err)
		}
		opt.Choices = choices
	}
	return opt, nil
}
