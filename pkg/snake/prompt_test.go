package snake

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestParseBool(t *testing.T) {
	tests := map[string]struct {
		in      string
		want    bool
		wantErr bool
	}{
		"yes":   {in: "yes", want: true},
		"Y":     {in: "Y", want: true},
		"1":     {in: "1", want: true},
		"no":    {in: "no", want: false},
		"False": {in: "False", want: false},
		"on":    {in: "on", want: true},
		"Off":   {in: "Off", want: false},
		"maybe": {in: "maybe", wantErr: true},
		"empty": {in: "", wantErr: true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseBool(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseBool(%q) error = %v, wantErr %v", tc.in, err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("ParseBool(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestConfirmAssumed(t *testing.T) {
	p := &Prompter{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	p.AssumeYes()
	ok, err := p.Confirm("complete anyway")
	if err != nil || !ok {
		t.Fatalf("Confirm = %v, %v; want true, nil", ok, err)
	}
}

func TestConfirmNeedsTerminal(t *testing.T) {
	p := &Prompter{In: strings.NewReader("y\n"), Out: &bytes.Buffer{}}
	if p.Interactive() {
		t.Fatal("a string reader is not a terminal")
	}
	_, err := p.Confirm("complete anyway")
	if !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("Confirm error = %v, want ErrNotInteractive", err)
	}
}

func TestAskFallsBackToDefault(t *testing.T) {
	p := &Prompter{In: strings.NewReader(""), Out: &bytes.Buffer{}}
	got, err := p.Ask("title", "Untitled")
	if err != nil || got != "Untitled" {
		t.Fatalf("Ask = %q, %v; want Untitled", got, err)
	}
	if _, err := p.Ask("title", ""); !errors.Is(err, ErrNotInteractive) {
		t.Fatalf("Ask without default error = %v", err)
	}
}
