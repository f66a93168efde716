package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/fbxcore/internal/fbxtest"
)

func writeSample(t *testing.T) string {
	t.Helper()
	z, err := fbxtest.Deflate(fbxtest.LE([]float32{1, 2, 3}))
	if err != nil {
		t.Fatalf("deflate: %v", err)
	}
	data := fbxtest.File(7400,
		fbxtest.Node{Name: "Root", Children: []fbxtest.Node{
			{Name: "A"},
			{Name: "B", Props: []fbxtest.Prop{fbxtest.I32(42)}},
		}},
		fbxtest.Node{Name: "Mesh", Props: []fbxtest.Prop{fbxtest.String("Cube"), fbxtest.Compressed('f', 3, z, len(z))}},
	)
	path := filepath.Join(t.TempDir(), "sample.fbx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr
	err := app.Run(context.Background(), append([]string{"fbxtool"}, args...))
	return stdout.String(), stderr.String(), err
}

func TestDumpCommand(t *testing.T) {
	path := writeSample(t)

	out, _, err := run(t, "--config", emptyConfig(t), "dump", "--file", path)
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	want := "Root :  {\nA\nB : 42\n}\nMesh : \"Cube\", float_array[3]\n"
	if out != want {
		t.Fatalf("got %q\nwant %q", out, want)
	}

	out, errOut, err := run(t, "--config", emptyConfig(t), "dump", "--no-properties", "--stats", path)
	if err != nil {
		t.Fatalf("dump --stats: %v", err)
	}
	if out != "Root :  {\nA\nB\n}\nMesh\n" {
		t.Fatalf("no-properties output: %q", out)
	}
	if !strings.Contains(errOut, "balanced=true") {
		t.Fatalf("stats missing or unbalanced: %q", errOut)
	}
}

func TestDumpRequiresInput(t *testing.T) {
	if _, _, err := run(t, "--config", emptyConfig(t), "dump"); err == nil {
		t.Fatal("expected error without an input file")
	}
}

func TestDumpReportsLoadFailure(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{
			name: "bad magic",
			data: []byte("definitely not an fbx file, just text"),
			want: "format",
		},
		{
			name: "short header",
			data: []byte("Kaydara FBX Binary  \x00\x1a"),
			want: "io",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.fbx")
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, _, err := run(t, "--config", emptyConfig(t), "dump", path)
			if err == nil || !strings.Contains(err.Error(), tt.want+" error") {
				t.Fatalf("expected %s error, got %v", tt.want, err)
			}
		})
	}
}

func TestDumpWideRecords(t *testing.T) {
	data := fbxtest.WideFile(7500, fbxtest.Node{Name: "Root", Children: []fbxtest.Node{{Name: "A"}}})
	path := filepath.Join(t.TempDir(), "wide.fbx")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, _, err := run(t, "--config", emptyConfig(t), "--wide-records", "dump", path)
	if err != nil {
		t.Fatalf("dump --wide-records: %v", err)
	}
	if out != "Root :  {\nA\n}\n" {
		t.Fatalf("got %q", out)
	}

	narrow := filepath.Join(t.TempDir(), "narrow.fbx")
	if err := os.WriteFile(narrow, fbxtest.File(7500, fbxtest.Node{Name: "Root"}), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if out, _, err := run(t, "--config", emptyConfig(t), "dump", narrow); err != nil || out != "Root\n" {
		t.Fatalf("narrow 7500 file: out=%q err=%v", out, err)
	}
}

func TestInspectCommand(t *testing.T) {
	path := writeSample(t)
	out, _, err := run(t, "--config", emptyConfig(t), "inspect", "--depth", "1", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"version:     7400", "nodes:       4", "roots:       Root, Mesh", "3 elements, 1 compressed", "    B (1 properties, 0 children)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestJSONCommand(t *testing.T) {
	path := writeSample(t)
	out, _, err := run(t, "--config", emptyConfig(t), "json", "--arrays", path)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if !strings.Contains(out, `"name":"Mesh"`) || !strings.Contains(out, `"value":[1,2,3]`) {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestConfigAppliesMemoryLimit(t *testing.T) {
	path := writeSample(t)
	conf := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(conf, []byte("memory_limit: 64\nlog_format: json\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, err := run(t, "--config", conf, "dump", path)
	if err == nil || !strings.Contains(err.Error(), "allocation") {
		t.Fatalf("expected allocation failure from config limit, got %v", err)
	}

	if _, _, err := run(t, "--config", conf, "--memory-limit", "0", "dump", path); err != nil {
		t.Fatalf("explicit flag should override config: %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "--config", emptyConfig(t), "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "version:") {
		t.Fatalf("unexpected output: %q", out)
	}
}
