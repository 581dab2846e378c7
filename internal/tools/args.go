package tools

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// decodeArgs maps the model-supplied argument object onto a typed struct.
// Unknown keys are rejected.
func decodeArgs(args map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArgs, err)
	}
	return nil
}
