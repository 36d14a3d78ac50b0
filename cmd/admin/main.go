package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  admin export   -data ./data -world world_1 [-out path]")
	fmt.Fprintln(os.Stderr, "  admin import   -data ./data -world world_1 -snapshot path")
	fmt.Fprintln(os.Stderr, "  admin rollback -data ./data -world world_1 -aabb x1,y1,z1:x2,y2,z2 [-since seq] [-snapshot path]")
	fmt.Fprintln(os.Stderr, "  admin edits    -data ./data -world world_1 [-actor name] [-limit n]")
	fmt.Fprintln(os.Stderr, "  admin stats    -data ./data -world world_1 [summary|editors|at x,z]")
	fmt.Fprintln(os.Stderr, "  admin surface  -data ./data -world world_1 -chunk cx,cz")
	fmt.Fprintln(os.Stderr, "  admin surface  -decode <surface>")
	fmt.Fprintln(os.Stderr, "  admin state    [-url http://127.0.0.1:8080]")
	fmt.Fprintln(os.Stderr, "  admin snapshot [-url http://127.0.0.1:8080]")
	fmt.Fprintln(os.Stderr, "the chunk db is locked while the server runs; stop it before export/import/surface")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	args := os.Args[2:]
	switch os.Args[1] {
	case "export":
		exportCmd(args)
	case "import":
		importCmd(args)
	case "rollback":
		rollbackCmd(args)
	case "edits":
		editsCmd(args)
	case "stats":
		statsCmd(args)
	case "surface":
		surfaceCmd(args)
	case "state":
		stateCmd(args)
	case "snapshot":
		snapshotCmd(args)
	default:
		usage()
		os.Exit(2)
	}
}

func fail(what string, err error) {
	fmt.Fprintln(os.Stderr, what+":", err)
	os.Exit(1)
}

func worldDir(dataDir, worldID string) string {
	return filepath.Join(dataDir, "worlds", worldID)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fail("json", err)
	}
	fmt.Println(string(b))
}

func parseInts(s string, n int) ([]int, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma separated integers, got %q", n, s)
	}
	out := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseVec3(s string) ([3]int, error) {
	var v [3]int
	ns, err := parseInts(s, 3)
	if err != nil {
		return v, err
	}
	copy(v[:], ns)
	return v, nil
}

func parseAABB(s string) (min, max [3]int, err error) {
	parts := strings.Split(s, ":")
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
		min[i], max[i] = a[i], b[i]
		if a[i] > b[i] {
			min[i], max[i] = b[i], a[i]
		}
	}
	return min, max, nil
}

func withinAABB(pos [3]int32, min, max [3]int) bool {
	for i := 0; i < 3; i++ {
		if int(pos[i]) < min[i] || int(pos[i]) > max[i] {
			return false
		}
	}
	return true
}

// latestSnapshot returns the snapshot in dir with the highest numeric name.
func latestSnapshot(dir string) string {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	type cand struct {
		seq  uint64
		path string
	}
	var cands []cand
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".snap.zst") {
			continue
		}
		seq, err := strconv.ParseUint(strings.TrimSuffix(name, ".snap.zst"), 10, 64)
		if err != nil {
			continue
		}
		cands = append(cands, cand{seq: seq, path: filepath.Join(dir, name)})
	}
	if len(cands) == 0 {
		return ""
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].seq > cands[j].seq })
	return cands[0].path
}
