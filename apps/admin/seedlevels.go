package main

import (
	"context"
	"fmt"
)

var defaultLevelCodes = []string{"a1", "a2", "b1", "b2", "c1", "c2"}

// seedLevels upserts the standard proficiency levels. Safe to re-run.
func (cli *commandLine) seedLevels() error {
	ctx := context.Background()
	for _, code := range defaultLevelCodes {
		lvl, err := cli.catRepo.EnsureLevel(ctx, code)
		if err != nil {
			return err
		}
		fmt.Printf("level %s: %s\n", lvl.Code, lvl.ID)
	}
	return nil
}
