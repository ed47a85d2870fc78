// Command preview runs one structure generator offline and prints its result
// document as JSON. Nothing is written to a world.
//
//	preview -type house -material stone_castle x=0 y=64 z=0 width=9 furniture=false
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"structurebuilder.ai/internal/builder"
	"structurebuilder.ai/internal/material"
	"structurebuilder.ai/internal/protocol"
)

func main() {
	var (
		typ           = flag.String("type", "", "structure type (required)")
		materialName  = flag.String("material", "", "material preset (default: first preset)")
		argsJSON      = flag.String("args", "", "generator arguments as a JSON object; key=value operands are merged on top")
		materialsPath = flag.String("materials", "", "extra palettes YAML (optional)")
		placements    = flag.Bool("placements", false, "include every placement in emission order")
		listOnly      = flag.Bool("list", false, "list structure types and material presets, then exit")
	)
	flag.Parse()

	presets, err := material.LoadFile(*materialsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load materials:", err)
		os.Exit(1)
	}
	svc, err := builder.New(builder.Config{
		Presets: presets,
		Logger:  log.New(io.Discard, "", 0),
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "builder:", err)
		os.Exit(1)
	}

	if *listOnly {
		fmt.Println("structures:", strings.Join(svc.Structures(), ", "))
		fmt.Println("materials: ", strings.Join(svc.MaterialNames(), ", "))
		return
	}
	if strings.TrimSpace(*typ) == "" {
		fmt.Fprintln(os.Stderr, "missing -type")
		os.Exit(2)
	}

	args, err := parseArgs(*argsJSON, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad arguments:", err)
		os.Exit(2)
	}

	pv, err := svc.Preview(builder.BuildRequest{Type: *typ, Material: *materialName, Args: args}, *placements)
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pv); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}

// parseArgs merges a JSON object with key=value operands. Operand values that
// parse as integers or booleans keep that type; anything else is a string.
func parseArgs(raw string, kvs []string) (map[string]any, error) {
	out := map[string]any{}
	if s := strings.TrimSpace(raw); s != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(s)))
		dec.UseNumber()
		if err := dec.Decode(&out); err != nil {
			return nil, fmt.Errorf("-args: %w", err)
		}
		if out == nil {
			return nil, errors.New("-args: expected a JSON object")
		}
	}
	for _, kv := range kvs {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("operand %q is not key=value", kv)
		}
		out[k] = operandValue(strings.TrimSpace(v))
	}
	return out, nil
}

func operandValue(v string) any {
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func describeError(err error) string {
	var coded protocol.Coded
	if errors.As(err, &coded) {
		return fmt.Sprintf("%s: %s", coded.Code(), err.Error())
	}
	return err.Error()
}
