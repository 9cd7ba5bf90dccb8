package pragma

import "testing"

func TestScanOwnLine(t *testing.T) {
	content := `FROM alpine
# shiplint ignore=DL3007
FROM ubuntu:latest
FROM ubuntu:latest
`
	state := Scan([]byte(content))

	if !state.Suppressed("DL3007", 3) {
		t.Error("line 3 should be suppressed")
	}
	if state.Suppressed("DL3007", 4) {
		t.Error("line 4 should not be suppressed, pragma binds once")
	}
	if state.Suppressed("DL3006", 3) {
		t.Error("unrelated code should not be suppressed")
	}
}

func TestScanOwnLineSkipsCommentsAndBlanks(t *testing.T) {
	content := `# shiplint ignore=DL3006
# an ordinary comment

FROM ubuntu
`
	state := Scan([]byte(content))
	if !state.Suppressed("DL3006", 4) {
		t.Error("pragma should bind past comments and blanks to line 4")
	}
}

func TestScanTrailing(t *testing.T) {
	content := "FROM ubuntu:latest # shiplint ignore=DL3007\nFROM ubuntu:latest\n"
	state := Scan([]byte(content))

	if !state.Suppressed("DL3007", 1) {
		t.Error("trailing pragma should suppress its own line")
	}
	if state.Suppressed("DL3007", 2) {
		t.Error("trailing pragma must not leak to other lines")
	}
}

func TestScanMultipleCodes(t *testing.T) {
	content := "# shiplint ignore=DL3006,DL3007\nFROM ubuntu\n"
	state := Scan([]byte(content))

	if !state.Suppressed("DL3006", 2) || !state.Suppressed("DL3007", 2) {
		t.Error("both codes should be suppressed on line 2")
	}
}

func TestScanIgnoreFile(t *testing.T) {
	content := "# shiplint ignore-file=DL3006\nFROM ubuntu\nFROM debian\n"
	state := Scan([]byte(content))

	for _, line := range []int{1, 2, 3, 99} {
		if !state.Suppressed("DL3006", line) {
			t.Errorf("line %d should be suppressed file-wide", line)
		}
	}
	if state.Suppressed("DL3007", 2) {
		t.Error("other codes unaffected")
	}
}

func TestScanDisable(t *testing.T) {
	content := "# shiplint disable\nFROM ubuntu\n"
	state := Scan([]byte(content))

	if !state.FileDisabled {
		t.Fatal("want FileDisabled")
	}
	if !state.Suppressed("ANYTHING", 42) {
		t.Error("disable suppresses everything")
	}
}

func TestScanIgnoresForeignComments(t *testing.T) {
	content := "# hadolint ignore=DL3006\nFROM ubuntu\n# shiplint\nFROM debian\n"
	state := Scan([]byte(content))

	if state.Suppressed("DL3006", 2) {
		t.Error("foreign tool pragmas must be ignored")
	}
	if state.FileDisabled {
		t.Error("marker without clauses does nothing")
	}
}

func TestMerge(t *testing.T) {
	a := Scan([]byte("# shiplint ignore-file=DL3006\nFROM ubuntu\n"))
	b := Scan([]byte("# shiplint ignore=DL3007\nFROM ubuntu\n"))

	merged := NewState()
	merged.Merge(a)
	merged.Merge(b)

	if !merged.Suppressed("DL3006", 7) {
		t.Error("file ignore should survive merge")
	}
	if !merged.Suppressed("DL3007", 2) {
		t.Error("line ignore should survive merge")
	}

	disabled := Scan([]byte("# shiplint disable\n"))
	merged.Merge(disabled)
	if !merged.FileDisabled {
		t.Error("disable in any contributing file disables the document")
	}
}

func TestMergeNil(t *testing.T) {
	s := NewState()
	s.Merge(nil)
	if s.FileDisabled || len(s.FileIgnores) != 0 {
		t.Error("merging nil must be a no-op")
	}
}
