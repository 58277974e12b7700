package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// NotMentioned is stored for every text column the model left out
const NotMentioned = "No mencionado"

// MeetingAnalysis is one persisted analysis row in the warehouse
type MeetingAnalysis struct {
	ID                      string         `json:"id" gorm:"type:varchar(100);primaryKey"`
	ClientName              string         `json:"cliente_nombre" gorm:"type:varchar(500)"`
	FarmerName              string         `json:"farmer_nombre" gorm:"type:varchar(500)"`
	HunterName              string         `json:"hunter_nombre" gorm:"type:varchar(500)"`
	MeetingDate             string         `json:"fecha_reunion" gorm:"type:varchar(100)"`
	DurationMinutes         float64        `json:"duracion_minutos" gorm:"type:numeric"`
	MeetingType             string         `json:"tipo_reunion" gorm:"type:varchar(100)"`
	PitchClarity            float64        `json:"claridad_pitch" gorm:"type:numeric"`
	NegotiationSkills       float64        `json:"negociacion_habilidades" gorm:"type:numeric"`
	ObjectionHandling       float64        `json:"resolucion_objecciones" gorm:"type:numeric"`
	FollowUpCommitments     datatypes.JSON `json:"followup_compromisos" gorm:"type:jsonb"`
	ClientInterestLevel     string         `json:"nivel_interes_cliente" gorm:"type:varchar(100)"`
	MainObjections          datatypes.JSON `json:"objeciones_principales" gorm:"type:jsonb"`
	DetectedNeeds           datatypes.JSON `json:"necesidades_detectadas" gorm:"type:jsonb"`
	DecisionMakerIdentified string         `json:"decision_maker_identificado" gorm:"type:varchar(50)"`
	DecisionMakerName       string         `json:"nombre_decision_maker" gorm:"type:varchar(500)"`
	CloseProbability        float64        `json:"probabilidad_cierre" gorm:"type:numeric"`
	NextSteps               datatypes.JSON `json:"next_steps" gorm:"type:jsonb"`
	Risks                   datatypes.JSON `json:"riesgos" gorm:"type:jsonb"`
	Summary                 string         `json:"resumen_breve" gorm:"type:varchar(5000)"`
	TopicsNotMentioned      datatypes.JSON `json:"temas_no_mencionados" gorm:"type:jsonb"`
	DocumentURL             string         `json:"link_documento" gorm:"type:varchar(1000)"`
	FolderID                string         `json:"folder_id" gorm:"type:varchar(200);index"`
	DocumentID              string         `json:"document_id" gorm:"type:varchar(200);index"`
	FullAnalysis            datatypes.JSON `json:"analisis_completo_json" gorm:"type:jsonb"`
	ProcessedAt             time.Time      `json:"fecha_procesamiento" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MeetingAnalysis) TableName() string {
	return "meeting_analyses"
}

// MeetingAnalysisID builds the row key: {folderID}_{documentID}_{YYYYMMDDHHMMSS}
func MeetingAnalysisID(folderID, documentID string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", folderID, documentID, now.Format("20060102150405"))
}

// NewMeetingAnalysis flattens a record into a warehouse row, defaulting every absent
// text field to NotMentioned, numbers to 0 and lists to an empty array.
func NewMeetingAnalysis(record *AnalysisRecord, doc MeetingDocument, now time.Time) (*MeetingAnalysis, error) {
	if record == nil {
		record = &AnalysisRecord{}
	}

	full, err := record.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode analysis: %w", err)
	}

	lists := make([]datatypes.JSON, 6)
	for i, l := range [][]string{
		record.FollowUpCommitments,
		record.MainObjections,
		record.DetectedNeeds,
		record.NextSteps,
		record.Risks,
		record.TopicsNotMentioned,
	} {
		if lists[i], err = listJSON(l); err != nil {
			return nil, err
		}
	}

	return &MeetingAnalysis{
		ID:                      MeetingAnalysisID(doc.FolderID, doc.DocumentID, now),
		ClientName:              textOrDefault(record.ClientName),
		FarmerName:              textOrDefault(record.FarmerName),
		HunterName:              textOrDefault(record.HunterName),
		MeetingDate:             textOrDefault(record.MeetingDate),
		DurationMinutes:         numberOrZero(record.DurationMinutes),
		MeetingType:             textOrDefault(record.MeetingType),
		PitchClarity:            numberOrZero(record.PitchClarity),
		NegotiationSkills:       numberOrZero(record.NegotiationSkills),
		ObjectionHandling:       numberOrZero(record.ObjectionHandling),
		FollowUpCommitments:     lists[0],
		ClientInterestLevel:     textOrDefault(record.ClientInterestLevel),
		MainObjections:          lists[1],
		DetectedNeeds:           lists[2],
		DecisionMakerIdentified: textOrDefault(record.DecisionMakerIdentified),
		DecisionMakerName:       textOrDefault(record.DecisionMakerName),
		CloseProbability:        numberOrZero(record.CloseProbability),
		NextSteps:               lists[3],
		Risks:                   lists[4],
		Summary:                 textOrDefault(record.Summary),
		TopicsNotMentioned:      lists[5],
		DocumentURL:             doc.DocumentURL,
		FolderID:                doc.FolderID,
		DocumentID:              doc.DocumentID,
		FullAnalysis:            datatypes.JSON(full),
		ProcessedAt:             now,
	}, nil
}

func textOrDefault(s *string) string {
	if s == nil {
		return NotMentioned
	}
	return *s
}

func numberOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func listJSON(l []string) (datatypes.JSON, error) {
	if l == nil {
		l = []string{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}
