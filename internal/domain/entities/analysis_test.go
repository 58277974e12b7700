package entities

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestAnalysisRecord_KnownFields(t *testing.T) {
	var r AnalysisRecord
	err := json.Unmarshal([]byte(`{
		"cliente_nombre": "Acme",
		"claridad_pitch": 8,
		"next_steps": ["enviar propuesta"],
		"decision_maker_identificado": true
	}`), &r)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	assert.Equal(t, *r.ClientName, "Acme")
	assert.Equal(t, *r.PitchClarity, 8.0)
	assert.Equal(t, r.NextSteps, []string{"enviar propuesta"})
	assert.Equal(t, *r.DecisionMakerIdentified, "true")
	assert.Equal(t, r.FarmerName == nil, true)
	assert.Equal(t, r.Risks == nil, true)
	assert.Equal(t, len(r.Extra), 0)
}

func TestAnalysisRecord_ExtraAndMistypedFields(t *testing.T) {
	var r AnalysisRecord
	err := json.Unmarshal([]byte(`{
		"cliente_nombre": "Acme",
		"claridad_pitch": "ocho",
		"riesgos": ["precio", 3],
		"hunter_nombre": null,
		"sentimiento": {"general": "positivo"}
	}`), &r)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	assert.Equal(t, *r.ClientName, "Acme")
	assert.Equal(t, r.PitchClarity == nil, true)
	assert.Equal(t, r.Risks == nil, true)
	assert.Equal(t, r.HunterName == nil, true)
	assert.Equal(t, len(r.Extra), 4)
	assert.Equal(t, string(r.Extra["claridad_pitch"]), `"ocho"`)

	out, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var roundTrip map[string]interface{}
	if err := json.Unmarshal(out, &roundTrip); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	assert.Equal(t, roundTrip["cliente_nombre"], "Acme")
	assert.Equal(t, roundTrip["claridad_pitch"], "ocho")
	assert.Equal(t, roundTrip["riesgos"], []interface{}{"precio", float64(3)})
	_, hasHunter := roundTrip["hunter_nombre"]
	assert.Equal(t, hasHunter, true)
	assert.Equal(t, roundTrip["sentimiento"], map[string]interface{}{"general": "positivo"})
}

func TestAnalysisRecord_DecisionMakerKeepsJSONType(t *testing.T) {
	for _, in := range []string{`{"decision_maker_identificado":false}`, `{"decision_maker_identificado":"Sí"}`} {
		var r AnalysisRecord
		if err := json.Unmarshal([]byte(in), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		out, err := r.MarshalJSON()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		assert.Equal(t, string(out), in)
	}
}

func TestAnalysisRecord_RejectsNonObjects(t *testing.T) {
	for _, in := range []string{`null`, `[1,2]`, `"texto"`, `42`} {
		var r AnalysisRecord
		if err := json.Unmarshal([]byte(in), &r); err == nil {
			t.Fatalf("expected %s to be rejected", in)
		}
	}

	var r AnalysisRecord
	err := r.UnmarshalJSON([]byte(`null`))
	if !errors.Is(err, ErrNotAnObject) {
		t.Fatalf("expected ErrNotAnObject, got %v", err)
	}
}

func TestAnalysisRecord_PrettyJSON(t *testing.T) {
	client := "Ñandú & Cía <SA>"
	score := 7.5
	r := AnalysisRecord{
		ClientName:   &client,
		PitchClarity: &score,
		NextSteps:    []string{},
	}

	pretty, err := r.PrettyJSON()
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}

	want := "{\n  \"cliente_nombre\": \"Ñandú & Cía <SA>\",\n  \"claridad_pitch\": 7.5,\n  \"next_steps\": []\n}"
	assert.Equal(t, pretty, want)
	if strings.Contains(pretty, `\u0026`) || strings.Contains(pretty, `\u003c`) {
		t.Fatalf("html characters must not be escaped")
	}
}

func TestAnalysisRecord_EmptyPrettyJSON(t *testing.T) {
	var r AnalysisRecord
	pretty, err := r.PrettyJSON()
	if err != nil {
		t.Fatalf("pretty: %v", err)
	}
	assert.Equal(t, pretty, "{}")
}
