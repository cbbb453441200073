// SPDX-License-Identifier: MPL-2.0

// Package cueutil decodes CUE documents against an embedded schema.
//
// Both the blastradius configuration file and the module manifest follow the
// same flow: compile the schema, compile the user document and unify it with
// the schema's root definition, then validate and decode into a Go struct.
//
//	//go:embed manifest_schema.cue
//	var schema []byte
//
//	result, err := cueutil.ParseAndDecode[document](
//	    schema,
//	    data,
//	    "#Manifest",
//	    cueutil.WithFilename("blastradius.cue"),
//	)
//	if err != nil {
//	    return nil, err // carries the CUE path of every failing field
//	}
//	return result.Value, nil
package cueutil
