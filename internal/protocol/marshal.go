package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaBaseURL = "https://pokeriot.local/schemas/"

var (
	// ErrMalformed means the frame is not a JSON object
	ErrMalformed = errors.New("malformed frame")
	// ErrMissingEvent means the frame has no usable "event" tag
	ErrMissingEvent = errors.New("frame has no event tag")
	// ErrUnknownEvent means the tag is not one the station consumes
	ErrUnknownEvent = errors.New("unknown event")
	// ErrInvalidPayload means the payload failed schema validation
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Marshal serializes an outbound frame to JSON
func Marshal(frame Outbound) ([]byte, error) {
	data, err := json.Marshal(frame)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", frame.OutboundTag(), err)
	}
	return data, nil
}

// Decoder validates inbound frames against the embedded JSON schemas and
// decodes them into typed events
type Decoder struct {
	frame   *jsonschema.Schema
	schemas map[Tag]*jsonschema.Schema
}

// inboundTags lists every tag with a schema file named after it
var inboundTags = []Tag{
	TagAddPlayerAck,
	TagRegistrationAck,
	TagRegisterPlayerAck,
	TagGameStart,
	TagGameUpdateAck,
	TagGameUpdate,
	TagGameEnd,
	TagError,
}

// NewDecoder compiles the embedded schemas
func NewDecoder() (*Decoder, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	compile := func(name string) (*jsonschema.Schema, error) {
		data, err := schemaFiles.ReadFile("schemas/" + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
		}
		url := schemaBaseURL + name + ".json"
		if err := compiler.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
		schema, err := compiler.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		return schema, nil
	}

	frame, err := compile("frame")
	if err != nil {
		return nil, err
	}

	schemas := make(map[Tag]*jsonschema.Schema, len(inboundTags))
	for _, tag := range inboundTags {
		schema, err := compile(string(tag))
		if err != nil {
			return nil, err
		}
		schemas[tag] = schema
	}

	return &Decoder{frame: frame, schemas: schemas}, nil
}

// Decode parses one inbound frame
func (d *Decoder) Decode(data []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: not an object", ErrMalformed)
	}

	if err := d.frame.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingEvent, err)
	}

	tag := Tag(strings.TrimSpace(obj["event"].(string)))
	schema, known := d.schemas[tag]
	if !known {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, tag)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, tag, err)
	}

	switch tag {
	case TagAddPlayerAck:
		return decodeInto[AddPlayerAck](data)
	case TagRegistrationAck:
		return decodeInto[RegistrationAck](data)
	case TagRegisterPlayerAck:
		return decodeInto[RegisterPlayerAck](data)
	case TagGameStart:
		return GameStart{}, nil
	case TagGameUpdateAck:
		return decodeInto[GameUpdateAck](data)
	case TagGameUpdate:
		return decodeInto[TableUpdate](data)
	case TagGameEnd:
		return decodeInto[GameEnd](data)
	case TagError:
		return decodeInto[ErrorEvent](data)
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, tag)
}

func decodeInto[T Event](data []byte) (Event, error) {
	var ev T
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return ev, nil
}
