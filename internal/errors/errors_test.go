package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "build error",
			code:    "E200",
			wantMsg: "Render returned no node",
			wantCat: CategoryBuild,
		},
		{
			name:    "mount error",
			code:    "E221",
			wantMsg: "No appendable node",
			wantCat: CategoryMount,
		},
		{
			name:    "dom error",
			code:    "E241",
			wantMsg: "Wrong document",
			wantCat: CategoryDOM,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryFixture, "fixture %q not found", "rings.yaml")
	if err.Message != `fixture "rings.yaml" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `fixture "rings.yaml" not found`)
	}
	if err.Category != CategoryFixture {
		t.Errorf("Category = %q, want %q", err.Category, CategoryFixture)
	}
}

func TestGaugeError_Error(t *testing.T) {
	err := New("E200")
	got := err.Error()
	want := "E200: Render returned no node"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	err2 := &GaugeError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

const ringsSource = `name: rings
tree:
  tag: svg
  children:
    - tag: circle
      class: ring
      ref: r25
`

func TestGaugeError_WithLocation(t *testing.T) {
	err := New("E160").WithLocation("rings.yaml", 5, 7)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != "rings.yaml" || err.Location.Line != 5 || err.Location.Column != 7 {
		t.Errorf("Location = %s, want rings.yaml:5:7", err.Location)
	}
	if err.Excerpt != nil {
		t.Error("WithLocation alone should not attach an excerpt")
	}
}

func TestGaugeError_WithSource(t *testing.T) {
	tests := []struct {
		name      string
		line      int
		wantFirst int
		wantLines []string
	}{
		{
			name:      "middle",
			line:      5,
			wantFirst: 3,
			wantLines: []string{"  tag: svg", "  children:", "    - tag: circle", "      class: ring", "      ref: r25"},
		},
		{
			name:      "first line",
			line:      1,
			wantFirst: 1,
			wantLines: []string{"name: rings", "tree:", "  tag: svg"},
		},
		{
			name:      "last line",
			line:      7,
			wantFirst: 5,
			wantLines: []string{"    - tag: circle", "      class: ring", "      ref: r25"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New("E160").WithLocation("rings.yaml", tt.line, 1).WithSource([]byte(ringsSource))
			if err.Excerpt == nil {
				t.Fatal("Excerpt is nil")
			}
			if err.Excerpt.First != tt.wantFirst {
				t.Errorf("First = %d, want %d", err.Excerpt.First, tt.wantFirst)
			}
			if strings.Join(err.Excerpt.Lines, "\n") != strings.Join(tt.wantLines, "\n") {
				t.Errorf("Lines = %q, want %q", err.Excerpt.Lines, tt.wantLines)
			}
		})
	}

	if err := New("E160").WithSource([]byte(ringsSource)); err.Excerpt != nil {
		t.Error("WithSource without a location should not attach an excerpt")
	}
	if err := New("E160").WithLocation("rings.yaml", 40, 1).WithSource([]byte(ringsSource)); err.Excerpt != nil {
		t.Error("a line past the end should not attach an excerpt")
	}
}

func TestGaugeError_AtOffset(t *testing.T) {
	src := []byte("{\n  \"adopt\": [\"native\",\n  \"strict\": tru\n}\n")
	off := int64(strings.Index(string(src), "tru"))
	err := New("E120").AtOffset("gaugekit.json", src, off)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.Line != 3 || err.Location.Column != 13 {
		t.Errorf("Location = %s, want gaugekit.json:3:13", err.Location)
	}
	if err.Excerpt == nil || err.Excerpt.First != 1 {
		t.Fatalf("Excerpt = %+v, want lines from 1", err.Excerpt)
	}

	if err := New("E120").AtOffset("gaugekit.json", src, -1); err.Location != nil {
		t.Error("a negative offset should leave the location unset")
	}
}

func TestGaugeError_Builders(t *testing.T) {
	err := New("E200").
		WithSuggestion("Return a VNode from Render").
		WithDetail("Custom detail")
	if err.Suggestion != "Return a VNode from Render" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestGaugeError_Wrap(t *testing.T) {
	inner := New("E241")
	outer := New("E221").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestGaugeError_Is(t *testing.T) {
	err := fmt.Errorf("mount: %w", New("E221"))
	if !stderrors.Is(err, New("E221")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E200")) {
		t.Error("errors.Is should not match a different code")
	}
	if !HasCode(err, "E221") {
		t.Error("HasCode should find the wrapped code")
	}
	if HasCode(nil, "E221") {
		t.Error("HasCode(nil) should be false")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E200") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	ge := New("E200")
	if FromError(ge, "E201") != ge {
		t.Error("FromError should return GaugeError as-is")
	}

	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "E201")
	if result.Wrapped != stdErr {
		t.Error("Standard error should be wrapped")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{
			name: "nil location",
			loc:  nil,
			want: "",
		},
		{
			name: "with column",
			loc:  &Location{File: "rings.yaml", Line: 10, Column: 5},
			want: "rings.yaml:10:5",
		},
		{
			name: "without column",
			loc:  &Location{File: "rings.yaml", Line: 10, Column: 0},
			want: "rings.yaml:10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.loc.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E160").
		WithLocation("rings.yaml", 4, 13).
		WithSource([]byte("name: rings\ntree:\n  tag: svg\n  children: 12\n")).
		WithSuggestion("children must be a list")

	formatted := err.Format()

	for _, want := range []string{
		"ERROR E160: Invalid fixture file",
		"at rings.yaml:4:13",
		"  2 | tree:",
		"> 4 |   children: 12",
		"    |             ^",
		"Hint: children must be a list",
		"Learn more:",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q, got:\n%s", want, formatted)
		}
	}
}

func TestFormatWithoutExcerpt(t *testing.T) {
	DisableColors()
	defer EnableColors()

	formatted := New("E181").WithLocation("rings.yaml", 3, 0).Format()
	if !strings.Contains(formatted, "at rings.yaml:3") {
		t.Errorf("Format should name the location, got:\n%s", formatted)
	}
	if strings.Contains(formatted, "|") {
		t.Errorf("Format should print no gutter without an excerpt, got:\n%s", formatted)
	}
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var b strings.Builder
	PrintError(&b, New("E142"))
	if !strings.Contains(b.String(), "ERROR E142:") {
		t.Errorf("PrintError = %q", b.String())
	}

	b.Reset()
	PrintError(&b, fmt.Errorf("plain"))
	if b.String() != "\nERROR: plain\n\n" {
		t.Errorf("PrintError = %q", b.String())
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E160").WithLocation("rings.yaml", 10, 5)
	compact := err.FormatCompact()

	want := "rings.yaml:10:5: E160: Invalid fixture file"
	if compact != want {
		t.Errorf("FormatCompact() = %q, want %q", compact, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("E200").WithLocation("card.go", 10, 5)
	json := err.FormatJSON()

	for _, want := range []string{`"code":"E200"`, `"category":"build"`, `"message":"Render returned no node"`, `"location":{"file":"card.go","line":10,"column":5}`} {
		if !strings.Contains(json, want) {
			t.Errorf("JSON should contain %s, got %s", want, json)
		}
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Error("GetAllCodes() should return codes")
	}

	found := false
	for _, code := range codes {
		if code == "E221" {
			found = true
			break
		}
	}
	if !found {
		t.Error("E221 should be in the codes list")
	}
}

func TestGetTemplate(t *testing.T) {
	template, ok := GetTemplate("E201")
	if !ok {
		t.Error("E201 should exist")
	}
	if template.Message != "Component factory failed" {
		t.Error("Template message mismatch")
	}

	_, ok = GetTemplate("E999")
	if ok {
		t.Error("E999 should not exist")
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryBuild,
		Message:  "Custom test error",
		Detail:   "This is a test error",
		DocURL:   "https://test.dev/E999",
	})
	defer delete(registry, "E999")

	err := New("E999")
	if err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	got = wrapText("", 10)
	if len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(paint(red, "test"), "\033[31m") {
		t.Error("paint should emit ANSI codes when colors are enabled")
	}

	DisableColors()
	if strings.Contains(paint(red, "test"), "\033[") {
		t.Error("paint should not emit ANSI codes when colors are disabled")
	}
	EnableColors()
}

func TestSummary(t *testing.T) {
	if got := Summary(New("E181")); got != "E181: Snapshot mismatch" {
		t.Errorf("Summary() = %q", got)
	}
	err := New("E161").WithDetail("rings: ref r25 is unresolved").WithLocation("rings.yaml", 3, 1)
	if got := Summary(err); got != "rings.yaml:3:1: E161: Fixture expectation failed: rings: ref r25 is unresolved" {
		t.Errorf("Summary() = %q", got)
	}
	if got := Summary(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("Summary() = %q", got)
	}
}
