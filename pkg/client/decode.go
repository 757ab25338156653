package client

import (
	"github.com/mitchellh/mapstructure"
)

// DecodeRow converts a change event row into one of the model structs.
func DecodeRow[T any](row map[string]any) (T, error) {
	var result T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Squash:           true,
		Result:           &result,
	})
	if err != nil {
		return result, err
	}

	if err := decoder.Decode(row); err != nil {
		return result, err
	}

	return result, nil
}
