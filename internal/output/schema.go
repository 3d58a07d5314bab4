// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
)

// DumpSchema writes the sorted attr keys of typ to w. If w is nil, os.Stdout
// is used.
func DumpSchema(typ reflect.Type, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	fmt.Fprintln(w, "Attributes available to the --attrs and --sort flags.")
	fmt.Fprintln(w, "")

	for _, name := range schemaKeys(typ) {
		fmt.Fprintln(w, name)
	}
}

// schemaKeys collects the attr tags of typ's exported fields.
func schemaKeys(typ reflect.Type) []string {
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}

	keys := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if tag, ok := field.Tag.Lookup("attr"); ok && tag != "" && field.IsExported() {
			keys = append(keys, tag)
		}
	}
	sort.Strings(keys)
	return keys
}
