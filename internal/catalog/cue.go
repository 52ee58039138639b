package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/GlaceYT/E-Canteen/internal/model"
)

//go:embed schema.cue
var schemaSource []byte

// LoadError reports a menu file that could not be loaded or does not match
// the menu schema.
type LoadError struct {
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// LoadCUE loads the CUE package in dir and returns its menu items.
//
// The package declares items under "menu", keyed by id:
//
//	menu: "masala-dosa": {
//		name:     "Masala Dosa"
//		category: "South Indian"
//		price:    60
//		veg:      true
//	}
//
// Items are unified with the embedded schema, must be concrete, and are
// returned in source order, normalised and validated.
func LoadCUE(dir string) ([]model.MenuItem, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("menu directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	ctx := cuecontext.New()
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, &LoadError{Message: "no CUE instances loaded"}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	if !value.LookupPath(cue.ParsePath("menu")).Exists() {
		return nil, &LoadError{Message: fmt.Sprintf("no menu declared in %s", dir), Pos: value.Pos()}
	}

	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("menu schema: %w", err)
	}

	menu := value.Unify(schema).LookupPath(cue.ParsePath("menu"))
	if err := menu.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := menu.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var items []model.MenuItem
	for iter.Next() {
		item, err := decodeItem(iter.Value())
		if err != nil {
			return nil, err
		}
		item.ID = iter.Label()
		item = item.Normalize()
		if err := item.Validate(); err != nil {
			return nil, &LoadError{Message: fmt.Sprintf("menu %q: %v", item.ID, err), Pos: iter.Value().Pos()}
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil, &LoadError{Message: fmt.Sprintf("menu in %s is empty", dir)}
	}
	return items, nil
}

// decodeItem goes through JSON so that prices keep their exact decimal
// literal.
func decodeItem(v cue.Value) (model.MenuItem, error) {
	raw, err := v.MarshalJSON()
	if err != nil {
		return model.MenuItem{}, formatCUEError(err)
	}
	var item model.MenuItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return model.MenuItem{}, &LoadError{Message: fmt.Sprintf("decode menu item: %v", err), Pos: v.Pos()}
	}
	return item, nil
}

// formatCUEError keeps the first CUE error with its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Message: err.Error()}
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &LoadError{Message: first.Error(), Pos: positions[0]}
	}
	return &LoadError{Message: first.Error()}
}
