package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// owner_guard scans the sqlc query files and ensures every SELECT/UPDATE/DELETE on a
// buyer-owned table filters by user_id. Queries used only by system paths carry a
// "-- owner-guard: system" line.
// Exit code 0 = ok, 1 = violation, 2 = other error.
func main() {
	root := "db/queries"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	deny, err := scan(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "owner_guard error: %v\n", err)
		os.Exit(2)
	}
	if len(deny) > 0 {
		for _, v := range deny {
			fmt.Fprintf(os.Stderr, "VIOLATION: %s\n", v)
		}
		os.Exit(1)
	}
	fmt.Println("owner_guard: OK")
}

var (
	reName   = regexp.MustCompile(`^--\s*name:\s*(\w+)`)
	reSystem = regexp.MustCompile(`(?i)^--\s*owner-guard:\s*system`)
	reStmt   = regexp.MustCompile(`(?i)^\s*(select|update|delete)\b`)
	reOwned  = regexp.MustCompile(`(?i)\b(from|update|join)\s+(addresses|payment_methods|wishlist_items|carts|orders)\b`)
	reOwner  = regexp.MustCompile(`(?i)\buser_id\s*=\s*(\$[0-9]+|sqlc\.arg)`)
)

func scan(dir string) ([]string, error) {
	var violations []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".sql" {
			return nil
		}
		bad, err := checkFile(path)
		if err != nil {
			return err
		}
		for _, name := range bad {
			violations = append(violations, path+": "+name)
		}
		return nil
	})
	return violations, err
}

type query struct {
	name   string
	system bool
	stmt   bool
	owned  bool
	scoped bool
}

func (q query) violates() bool {
	return q.name != "" && q.stmt && q.owned && !q.scoped && !q.system
}

// checkFile returns the names of the queries in path that break the rule.
func checkFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var (
		bad []string
		cur query
	)
	s := bufio.NewScanner(f)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if m := reName.FindStringSubmatch(line); m != nil {
			if cur.violates() {
				bad = append(bad, cur.name)
			}
			cur = query{name: m[1]}
			continue
		}
		if reSystem.MatchString(line) {
			cur.system = true
			continue
		}
		if reStmt.MatchString(line) {
			cur.stmt = true
		}
		if reOwned.MatchString(line) {
			cur.owned = true
		}
		if reOwner.MatchString(line) {
			cur.scoped = true
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if cur.violates() {
		bad = append(bad, cur.name)
	}
	return bad, nil
}
