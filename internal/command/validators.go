// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"slices"
)

type FlagValidatorType func(any) error

var validOutputFlagValues = []string{"text", "json", "yaml"}

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

func OutputValidator(value any) error {
	s, ok := value.(string)
	if !ok || !slices.Contains(validOutputFlagValues, s) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// PaddingValidator accepts 0 through 8.
func PaddingValidator(value any) error {
	n, ok := value.(int)
	if !ok || n < 0 || n > 8 {
		return fmt.Errorf("must be between 0 and 8, got %v", value)
	}
	return nil
}
