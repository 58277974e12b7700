package entities

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
)

// AnalysisRecord is the structured analysis the model extracts from one meeting transcript.
// Every known field is optional: nil means the model did not return it.
// Keys outside the schema, and known keys whose value has an unexpected JSON type
// (including null), are kept verbatim in Extra.
type AnalysisRecord struct {
	ClientName              *string  `json:"cliente_nombre,omitempty"`
	FarmerName              *string  `json:"farmer_nombre,omitempty"`
	HunterName              *string  `json:"hunter_nombre,omitempty"`
	MeetingDate             *string  `json:"fecha_reunion,omitempty"`
	DurationMinutes         *float64 `json:"duracion_minutos,omitempty"`
	MeetingType             *string  `json:"tipo_reunion,omitempty"`
	PitchClarity            *float64 `json:"claridad_pitch,omitempty"`
	NegotiationSkills       *float64 `json:"negociacion_habilidades,omitempty"`
	ObjectionHandling       *float64 `json:"resolucion_objecciones,omitempty"`
	FollowUpCommitments     []string `json:"followup_compromisos,omitempty"`
	ClientInterestLevel     *string  `json:"nivel_interes_cliente,omitempty"`
	MainObjections          []string `json:"objeciones_principales,omitempty"`
	DetectedNeeds           []string `json:"necesidades_detectadas,omitempty"`
	DecisionMakerIdentified *string  `json:"decision_maker_identificado,omitempty"`
	DecisionMakerName       *string  `json:"nombre_decision_maker,omitempty"`
	CloseProbability        *float64 `json:"probabilidad_cierre,omitempty"`
	NextSteps               []string `json:"next_steps,omitempty"`
	Risks                   []string `json:"riesgos,omitempty"`
	Summary                 *string  `json:"resumen_breve,omitempty"`
	TopicsNotMentioned      []string `json:"temas_no_mencionados,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`

	// the model answered the decision-maker flag as a JSON boolean
	decisionMakerBool bool
}

// ErrNotAnObject is returned when the analysis text is valid JSON but not an object
var ErrNotAnObject = errors.New("analysis is not a JSON object")

var jsonNull = []byte("null")

type recordField struct {
	key    string
	decode func(raw json.RawMessage) bool
	value  func() (interface{}, bool)
}

// fields lists the schema in output order
func (r *AnalysisRecord) fields() []recordField {
	return []recordField{
		stringField("cliente_nombre", &r.ClientName),
		stringField("farmer_nombre", &r.FarmerName),
		stringField("hunter_nombre", &r.HunterName),
		stringField("fecha_reunion", &r.MeetingDate),
		numberField("duracion_minutos", &r.DurationMinutes),
		stringField("tipo_reunion", &r.MeetingType),
		numberField("claridad_pitch", &r.PitchClarity),
		numberField("negociacion_habilidades", &r.NegotiationSkills),
		numberField("resolucion_objecciones", &r.ObjectionHandling),
		listField("followup_compromisos", &r.FollowUpCommitments),
		stringField("nivel_interes_cliente", &r.ClientInterestLevel),
		listField("objeciones_principales", &r.MainObjections),
		listField("necesidades_detectadas", &r.DetectedNeeds),
		r.decisionMakerField(),
		stringField("nombre_decision_maker", &r.DecisionMakerName),
		numberField("probabilidad_cierre", &r.CloseProbability),
		listField("next_steps", &r.NextSteps),
		listField("riesgos", &r.Risks),
		stringField("resumen_breve", &r.Summary),
		listField("temas_no_mencionados", &r.TopicsNotMentioned),
	}
}

func stringField(key string, dst **string) recordField {
	return recordField{
		key: key,
		decode: func(raw json.RawMessage) bool {
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return false
			}
			*dst = &v
			return true
		},
		value: func() (interface{}, bool) {
			if *dst == nil {
				return nil, false
			}
			return **dst, true
		},
	}
}

func numberField(key string, dst **float64) recordField {
	return recordField{
		key: key,
		decode: func(raw json.RawMessage) bool {
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return false
			}
			*dst = &v
			return true
		},
		value: func() (interface{}, bool) {
			if *dst == nil {
				return nil, false
			}
			return **dst, true
		},
	}
}

func listField(key string, dst *[]string) recordField {
	return recordField{
		key: key,
		decode: func(raw json.RawMessage) bool {
			v := []string{}
			if err := json.Unmarshal(raw, &v); err != nil {
				return false
			}
			*dst = v
			return true
		},
		value: func() (interface{}, bool) {
			if *dst == nil {
				return nil, false
			}
			return *dst, true
		},
	}
}

// decisionMakerField accepts a JSON boolean or string
func (r *AnalysisRecord) decisionMakerField() recordField {
	return recordField{
		key: "decision_maker_identificado",
		decode: func(raw json.RawMessage) bool {
			var b bool
			if err := json.Unmarshal(raw, &b); err == nil {
				s := strconv.FormatBool(b)
				r.DecisionMakerIdentified = &s
				r.decisionMakerBool = true
				return true
			}
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return false
			}
			r.DecisionMakerIdentified = &s
			r.decisionMakerBool = false
			return true
		},
		value: func() (interface{}, bool) {
			if r.DecisionMakerIdentified == nil {
				return nil, false
			}
			if r.decisionMakerBool {
				if b, err := strconv.ParseBool(*r.DecisionMakerIdentified); err == nil {
					return b, true
				}
			}
			return *r.DecisionMakerIdentified, true
		},
	}
}

// UnmarshalJSON decodes a JSON object field by field so that one mistyped
// field never discards the rest of the analysis.
func (r *AnalysisRecord) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		return ErrNotAnObject
	}

	*r = AnalysisRecord{}
	known := make(map[string]recordField)
	for _, f := range r.fields() {
		known[f.key] = f
	}

	for key, value := range raw {
		f, ok := known[key]
		if ok && !bytes.Equal(bytes.TrimSpace(value), jsonNull) && f.decode(value) {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = value
	}
	return nil
}

// MarshalJSON emits the present known fields in schema order followed by Extra sorted by key
func (r AnalysisRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true

	writeKey := func(key string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := encodeNoEscape(key)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		return nil
	}

	for _, f := range r.fields() {
		v, present := f.value()
		if !present {
			continue
		}
		if _, shadowed := r.Extra[f.key]; shadowed {
			continue
		}
		if err := writeKey(f.key); err != nil {
			return nil, err
		}
		b, err := encodeNoEscape(v)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}

	keys := make([]string, 0, len(r.Extra))
	for k := range r.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeKey(k); err != nil {
			return nil, err
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, r.Extra[k]); err != nil {
			return nil, err
		}
		buf.Write(compact.Bytes())
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// PrettyJSON renders the record with two-space indentation and without HTML escaping
func (r *AnalysisRecord) PrettyJSON() (string, error) {
	compact, err := r.MarshalJSON()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func encodeNoEscape(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
