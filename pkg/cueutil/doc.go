// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema and turns
// CUE errors into "file: path.to[0].field: message" form.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	values, err := cueutil.DecodeMap(schema, "#Config", data, cueutil.WithFilename("config.cue"))
package cueutil
