package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	persistlog "structurebuilder.ai/internal/persistence/log"
	"structurebuilder.ai/internal/protocol"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "area":
			areaCmd(os.Args[2:])
			return
		case "metrics":
			metricsCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	files, err := buildLogFiles(filepath.Join(*dataDir, "builds"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, f := range files {
		fmt.Println(filepath.Base(f))
	}
}

// areaCmd prints every logged build whose bounding box intersects an AABB.
func areaCmd(args []string) {
	fs := flag.NewFlagSet("area", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	aabb := fs.String("aabb", "", "AABB filter: x1,y1,z1:x2,y2,z2 (required)")
	typ := fs.String("type", "", "structure type filter (optional)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*aabb) == "" {
		fmt.Fprintln(os.Stderr, "missing -aabb")
		os.Exit(2)
	}
	min, max, err := parseAABB(*aabb)
	if err != nil {
		fmt.Fprintln(os.Stderr, "bad -aabb:", err)
		os.Exit(2)
	}

	files, err := buildLogFiles(filepath.Join(*dataDir, "builds"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	var matched int
	for _, path := range files {
		recs, err := persistlog.ReadBuilds(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, "read builds:", err)
			os.Exit(1)
		}
		for _, rec := range recs {
			if *typ != "" && !strings.EqualFold(rec.Result.StructureType, *typ) {
				continue
			}
			if !intersectsAABB(rec.Result.BoundingBox, min, max) {
				continue
			}
			matched++
			_ = enc.Encode(rec)
		}
	}
	fmt.Fprintf(os.Stderr, "area %s: files=%d matched=%d\n", *aabb, len(files), matched)
}

func buildLogFiles(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "builds-") && strings.HasSuffix(name, ".jsonl.zst") {
			out = append(out, filepath.Join(dir, name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func intersectsAABB(bb protocol.BoundingBox, min, max [3]int) bool {
	return bb.MinX <= max[0] && bb.MaxX >= min[0] &&
		bb.MinY <= max[1] && bb.MaxY >= min[1] &&
		bb.MinZ <= max[2] && bb.MaxZ >= min[2]
}

func parseAABB(s string) (min, max [3]int, err error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return min, max, fmt.Errorf("expected x1,y1,z1:x2,y2,z2")
	}
	a, err := parseVec3(parts[0])
	if err != nil {
		return min, max, err
	}
	b, err := parseVec3(parts[1])
	if err != nil {
		return min, max, err
	}
	for i := 0; i < 3; i++ {
		if a[i] <= b[i] {
			min[i], max[i] = a[i], b[i]
		} else {
			min[i], max[i] = b[i], a[i]
		}
	}
	return min, max, nil
}

func parseVec3(s string) ([3]int, error) {
	var out [3]int
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 3 {
		return out, fmt.Errorf("expected x,y,z")
	}
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return out, err
		}
		out[i] = n
	}
	return out, nil
}
