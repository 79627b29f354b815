// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package access

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		want        Level
		expectError bool
	}{
		{name: "anon", input: "anon", want: Anonymous},
		{name: "anonymous uppercase", input: "ANONYMOUS", want: Anonymous},
		{name: "player", input: " player ", want: Player},
		{name: "zero", input: "0", want: Anonymous},
		{name: "one", input: "1", want: Player},
		{name: "unknown number", input: "7", want: Level(7)},
		{name: "garbage", input: "admin", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.expectError {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelValues(t *testing.T) {
	if Anonymous != 0 || Player != 1 {
		t.Fatalf("levels changed: anon=%d player=%d", Anonymous, Player)
	}
	if Player.String() != "player" || Anonymous.String() != "anon" {
		t.Errorf("unexpected names: %s %s", Anonymous, Player)
	}
	if Level(5).String() != "level(5)" {
		t.Errorf("Level(5).String() = %s", Level(5))
	}
}
