package source

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"gopkg.in/mgo.v2"
	"gopkg.in/mgo.v2/bson"

	"github.com/gyeh/readmitrisk/internal/model"
)

// Collections names the document collections holding each record kind.
type Collections struct {
	Admissions    string `yaml:"admissions"`
	Comorbidities string `yaml:"comorbidities"`
	Patients      string `yaml:"patients"`
}

// DefaultCollections are the collection names written by the sample-data
// importer of the patient-risk API.
var DefaultCollections = Collections{
	Admissions:    "dischargeadmissions",
	Comorbidities: "dischargecormorbids",
	Patients:      "dischargepatients",
}

type admissionDoc struct {
	HadmID        int64     `bson:"hadm_id"`
	SubjectID     int64     `bson:"subject_id"`
	AdmissionType string    `bson:"admission_type"`
	Diagnosis     string    `bson:"diagnosis"`
	Insurance     string    `bson:"insurance"`
	Ethnicity     string    `bson:"ethnicity"`
	Language      string    `bson:"language"`
	MaritalStatus string    `bson:"marital_status"`
	AdmitTime     time.Time `bson:"admittime"`
	DischTime     time.Time `bson:"dischtime"`
}

type comorbidityDoc struct {
	HadmID       int64    `bson:"hadm_id"`
	DRGType      string   `bson:"drg_type"`
	DRGCode      any      `bson:"drg_code"`
	Description  string   `bson:"description"`
	DRGSeverity  *float64 `bson:"drg_severity"`
	DRGMortality *float64 `bson:"drg_mortality"`
}

type patientDoc struct {
	SubjectID int64     `bson:"subject_id"`
	Gender    string    `bson:"gender"`
	DOB       time.Time `bson:"dob"`
}

func (d admissionDoc) toModel() model.Admission {
	return model.Admission{
		HadmID:        d.HadmID,
		SubjectID:     d.SubjectID,
		AdmissionType: d.AdmissionType,
		Diagnosis:     d.Diagnosis,
		Insurance:     d.Insurance,
		Ethnicity:     d.Ethnicity,
		Language:      d.Language,
		MaritalStatus: d.MaritalStatus,
		AdmitTime:     d.AdmitTime.UTC(),
		DischTime:     d.DischTime.UTC(),
	}
}

func (d comorbidityDoc) toModel() model.Comorbidity {
	return model.Comorbidity{
		HadmID:      d.HadmID,
		DRGType:     d.DRGType,
		DRGCode:     codeString(d.DRGCode),
		Description: d.Description,
		Severity:    d.DRGSeverity,
		Mortality:   d.DRGMortality,
	}
}

// codeString renders a DRG code stored either as a string or as a number.
func codeString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	default:
		return fmt.Sprint(c)
	}
}

func (d patientDoc) toModel() model.Patient {
	return model.Patient{SubjectID: d.SubjectID, Gender: d.Gender, DOB: d.DOB.UTC()}
}

// Mongo reads records from MongoDB collections. Each call runs on a copy of
// the master session.
type Mongo struct {
	session *mgo.Session
	coll    Collections
}

// DialMongo connects to url. Queries run against the database named in the
// URL path.
func DialMongo(url string, coll Collections, timeout time.Duration) (*Mongo, error) {
	session, err := mgo.DialWithTimeout(url, timeout)
	if err != nil {
		return nil, fmt.Errorf("dial mongo: %w: %w", ErrUnavailable, err)
	}
	session.SetMode(mgo.Monotonic, true)
	return &Mongo{session: session, coll: coll}, nil
}

// Close closes the master session.
func (m *Mongo) Close() {
	m.session.Close()
}

func findIn[D any, T any](ctx context.Context, m *Mongo, collection, field string, ids []int64, conv func(D) T) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session := m.session.Copy()
	defer session.Close()

	var docs []D
	err := session.DB("").C(collection).
		Find(bson.M{field: bson.M{"$in": Distinct(ids)}}).
		All(&docs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", collection, ErrUnavailable, err)
	}
	out := make([]T, len(docs))
	for i, d := range docs {
		out[i] = conv(d)
	}
	return out, nil
}

// AdmissionIDs lists the distinct hadm_id values of the admissions collection.
func (m *Mongo) AdmissionIDs(ctx context.Context) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	session := m.session.Copy()
	defer session.Close()

	var ids []int64
	if err := session.DB("").C(m.coll.Admissions).Find(nil).Distinct("hadm_id", &ids); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", m.coll.Admissions, ErrUnavailable, err)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *Mongo) Admissions(ctx context.Context, hadmIDs []int64) ([]model.Admission, error) {
	return findIn(ctx, m, m.coll.Admissions, "hadm_id", hadmIDs, admissionDoc.toModel)
}

func (m *Mongo) Comorbidities(ctx context.Context, hadmIDs []int64) ([]model.Comorbidity, error) {
	return findIn(ctx, m, m.coll.Comorbidities, "hadm_id", hadmIDs, comorbidityDoc.toModel)
}

func (m *Mongo) Patients(ctx context.Context, subjectIDs []int64) ([]model.Patient, error) {
	return findIn(ctx, m, m.coll.Patients, "subject_id", subjectIDs, patientDoc.toModel)
}

var _ Population = (*Mongo)(nil)
