// SPDX-License-Identifier: MPL-2.0

package execute

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/lfqrun/lfqrun/pkg/params"
)

func mandatoryValues() params.Values {
	return params.Values{
		"input":    params.String("sample.sdrf"),
		"database": params.String("proteins.fasta"),
	}
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		spec  params.Spec
		value params.Value
		want  []string
	}{
		{
			name:  "absent optional string",
			spec:  params.Spec{Name: "email", Kind: params.KindString},
			value: params.Absent(),
			want:  nil,
		},
		{
			name:  "absent optional bool",
			spec:  params.Spec{Name: "add_decoys", Kind: params.KindBool},
			value: params.Absent(),
			want:  nil,
		},
		{
			name:  "string",
			spec:  params.Spec{Name: "search_engines", Kind: params.KindString},
			value: params.String("comet,msgf"),
			want:  []string{"--search_engines", "comet,msgf"},
		},
		{
			name:  "empty string is still a value",
			spec:  params.Spec{Name: "decoy_affix", Kind: params.KindString},
			value: params.String(""),
			want:  []string{"--decoy_affix", ""},
		},
		{
			name:  "bool true",
			spec:  params.Spec{Name: "targeted_only", Kind: params.KindBool},
			value: params.Bool(true),
			want:  []string{"--targeted_only", "true"},
		},
		{
			name:  "bool false",
			spec:  params.Spec{Name: "enable_qc", Kind: params.KindBool},
			value: params.Bool(false),
			want:  []string{"--enable_qc", "false"},
		},
		{
			name:  "int",
			spec:  params.Spec{Name: "subset_max_train", Kind: params.KindInt},
			value: params.Int(300000),
			want:  []string{"--subset_max_train", "300000"},
		},
		{
			name:  "whole float",
			spec:  params.Spec{Name: "precursor_mass_tolerance", Kind: params.KindFloat},
			value: params.Float(5),
			want:  []string{"--precursor_mass_tolerance", "5"},
		},
		{
			name:  "fractional float",
			spec:  params.Spec{Name: "fragment_mass_tolerance", Kind: params.KindFloat},
			value: params.Float(0.03),
			want:  []string{"--fragment_mass_tolerance", "0.03"},
		},
		{
			name:  "remote directory reference",
			spec:  params.Spec{Name: "outdir", Kind: params.KindDir, Output: true},
			value: params.Dir("s3://bucket/results"),
			want:  []string{"--outdir", "s3://bucket/results"},
		},
		{
			name:  "absolute file reference",
			spec:  params.Spec{Name: "expdesign", Kind: params.KindFile},
			value: params.File("/data/../data/design.tsv"),
			want:  []string{"--expdesign", "/data/design.tsv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Translate(tt.spec, tt.value)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildArgs_MandatoryAndDefaults(t *testing.T) {
	t.Parallel()

	reg := params.Default()
	args, err := BuildArgs(reg, mandatoryValues())
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}
	if len(args)%2 != 0 {
		t.Fatalf("BuildArgs() returned odd token count %d: %q", len(args), args)
	}

	var wantNames []string
	for _, spec := range reg.Specs() {
		if spec.Required || spec.Default.IsSet() {
			wantNames = append(wantNames, spec.Name)
		}
	}

	var gotNames []string
	for i := 0; i < len(args); i += 2 {
		flag, ok := strings.CutPrefix(args[i], "--")
		if !ok {
			t.Fatalf("token %d = %q, want a flag", i, args[i])
		}
		gotNames = append(gotNames, flag)
	}

	if !slices.Equal(gotNames, wantNames) {
		t.Errorf("flag names = %v\nwant %v", gotNames, wantNames)
	}
	seen := make(map[string]bool, len(gotNames))
	for _, name := range gotNames {
		if seen[name] {
			t.Errorf("duplicate flag --%s", name)
		}
		seen[name] = true
	}

	if idx := slices.Index(args, "--input"); idx < 0 || args[idx+1] != "sample.sdrf" {
		t.Errorf("args missing --input sample.sdrf: %q", args)
	}
	if idx := slices.Index(args, "--database"); idx < 0 || args[idx+1] != "proteins.fasta" {
		t.Errorf("args missing --database proteins.fasta: %q", args)
	}
	if idx := slices.Index(args, "--precursor_mass_tolerance"); idx < 0 || args[idx+1] != "5" {
		t.Errorf("args missing --precursor_mass_tolerance 5: %q", args)
	}
	for _, unset := range []string{"--outdir", "--add_decoys", "--enable_qc", "--ref_condition"} {
		if slices.Contains(args, unset) {
			t.Errorf("args contain %s although it has no value", unset)
		}
	}
}

func TestBuildArgs_ExplicitValues(t *testing.T) {
	t.Parallel()

	reg := params.Default()
	values := mandatoryValues()
	values.Set("targeted_only", params.Bool(true))
	values.Set("add_decoys", params.Bool(true))
	values.Set("search_engines", params.String("comet,msgf"))
	values.Set("outdir", params.Dir("s3://bucket/out"))
	values.Set("ref_condition", params.String("control"))

	args, err := BuildArgs(reg, values)
	if err != nil {
		t.Fatalf("BuildArgs() error = %v", err)
	}

	pairs := map[string]string{
		"--targeted_only":  "true",
		"--add_decoys":     "true",
		"--search_engines": "comet,msgf",
		"--outdir":         "s3://bucket/out",
		"--ref_condition":  "control",
	}
	for flag, want := range pairs {
		idx := slices.Index(args, flag)
		if idx < 0 {
			t.Errorf("args missing %s", flag)
			continue
		}
		if args[idx+1] != want {
			t.Errorf("%s = %q, want %q", flag, args[idx+1], want)
		}
	}

	// Explicit values keep registry order, not insertion order.
	if slices.Index(args, "--outdir") > slices.Index(args, "--add_decoys") {
		t.Errorf("--outdir appears after --add_decoys: %q", args)
	}
}

func TestBuildArgs_Errors(t *testing.T) {
	t.Parallel()

	reg := params.Default()

	tests := []struct {
		name      string
		values    params.Values
		wantParam []string
		wantErr   error
	}{
		{
			name:      "no values",
			values:    nil,
			wantParam: []string{"input", "database"},
			wantErr:   ErrMissingParameter,
		},
		{
			name:      "missing database",
			values:    params.Values{"input": params.String("sample.sdrf")},
			wantParam: []string{"database"},
			wantErr:   ErrMissingParameter,
		},
		{
			name: "blank input",
			values: params.Values{
				"input":    params.String("   "),
				"database": params.String("proteins.fasta"),
			},
			wantParam: []string{"input"},
			wantErr:   ErrMissingParameter,
		},
		{
			name: "unknown parameter",
			values: params.Values{
				"input":       params.String("sample.sdrf"),
				"database":    params.String("proteins.fasta"),
				"max_threads": params.Int(8),
			},
			wantParam: []string{"max_threads"},
			wantErr:   ErrUnknownParameter,
		},
		{
			name: "wrong kind",
			values: params.Values{
				"input":                    params.String("sample.sdrf"),
				"database":                 params.String("proteins.fasta"),
				"allowed_missed_cleavages": params.String("two"),
			},
			wantParam: []string{"allowed_missed_cleavages"},
			wantErr:   params.ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args, err := BuildArgs(reg, tt.values)
			if err == nil {
				t.Fatalf("BuildArgs() = %q, want error", args)
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("error %v does not wrap ErrConfiguration", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v does not wrap %v", err, tt.wantErr)
			}
			for _, param := range tt.wantParam {
				if !strings.Contains(err.Error(), `"`+param+`"`) {
					t.Errorf("error %q does not name parameter %q", err, param)
				}
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("error %T is not a *ConfigurationError", err)
			}
		})
	}
}

func TestResolveValues(t *testing.T) {
	t.Parallel()

	reg := params.Default()
	values := mandatoryValues()
	values.Set("num_hits", params.Int(5))

	resolved, err := ResolveValues(reg, values)
	if err != nil {
		t.Fatalf("ResolveValues() error = %v", err)
	}
	if got := resolved.Get("num_hits"); !got.Equal(params.Int(5)) {
		t.Errorf("num_hits = %#v, want explicit 5", got)
	}
	if got := resolved.Get("max_mods"); !got.Equal(params.Int(3)) {
		t.Errorf("max_mods = %#v, want default 3", got)
	}
	if got := resolved.Get("email"); got.IsSet() {
		t.Errorf("email = %#v, want absent", got)
	}
	if values.Get("max_mods").IsSet() {
		t.Error("ResolveValues() modified its input")
	}
}
