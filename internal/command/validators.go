// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/staranto/idmapgo/internal/mapping"
	"github.com/staranto/idmapgo/internal/resolver/gprofiler"
)

type FlagValidatorType func(any) error

func FlagValidators(value any, validators ...FlagValidatorType) error {
	for _, v := range validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// JammedFlagValidator verifies that the arg following a flag does not begin
// with '--'.  urfave/cli allows this and I don't see how to turn it off.
func JammedFlagValidator(value any) error {
	if strings.HasPrefix(value.(string), "--") {
		return errors.New("must not begin with '--'")
	}
	return nil
}

func OutputValidator(value any) error {
	var validOutputFlagValues = []string{"text", "json", "raw", "yaml"}
	if !slices.Contains(validOutputFlagValues, value.(string)) {
		return fmt.Errorf("must be one of %v", validOutputFlagValues)
	}
	return nil
}

// OrganismValidator accepts an empty value or one of the organisms the
// ortholog service knows.
func OrganismValidator(value any) error {
	s := value.(string)
	if s == "" {
		return nil
	}
	if _, err := gprofiler.SpeciesCode(s); err != nil {
		return fmt.Errorf("must be one of %s", organismList())
	}
	return nil
}

func TypeValidator(value any) error {
	if _, err := mapping.ParseInputType(value.(string)); err != nil {
		return errors.New("must be one of protein, gene, ortholog")
	}
	return nil
}

func organismList() string {
	return strings.Join(gprofiler.Organisms(), ", ")
}

// OrthologOrganismsValidator checks the source and target organisms of an
// ortholog query before anything is looked up or sent.
func OrthologOrganismsValidator(source, target string) error {
	if source == "" || target == "" {
		return errors.New("orthologs need both --organism and --target")
	}
	for _, o := range []string{source, target} {
		if _, err := gprofiler.SpeciesCode(o); err != nil {
			return err
		}
	}
	return nil
}
