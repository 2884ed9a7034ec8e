package streamgen

import (
	"github.com/teranos/streamgen/errors"
)

// Assemble builds the unit for owner from its adapters.
//
// It returns nil without error when there are no adapters: interfaces
// without usable events produce no output at all. The returned unit has not
// been validated yet.
func Assemble(target Target, local Package, owner Interface, imports *ImportSet, wrappers []WrapperSpec) (*Unit, error) {
	if len(wrappers) == 0 {
		return nil, nil
	}

	short := ShortName(owner.Name)
	unit := &Unit{
		Interface: owner.QualifiedName(),
		ShortName: short,
		TypeName:  TypeName(short),
		Filename:  Filename(short, target.FileExtension()),
	}

	src, err := target.RenderUnit(UnitSource{
		Package:  local,
		TypeName: unit.TypeName,
		Owner:    owner,
		Imports:  imports.Used(),
		Wrappers: wrappers,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to render %s", unit.Filename)
	}
	unit.Source = src
	return unit, nil
}
