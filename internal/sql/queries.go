package sql

import (
	"embed"
)

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/select_admissions.sql
var SelectAdmissions string

//go:embed queries/select_comorbidities.sql
var SelectComorbidities string

//go:embed queries/select_patients.sql
var SelectPatients string

//go:embed queries/truncate_sources.sql
var TruncateSources string

//go:embed queries/latest_scores.sql
var LatestScores string

//go:embed queries/list_admission_ids.sql
var ListAdmissionIDs string

//go:embed queries/insert_plan.sql
var InsertPlan string

//go:embed queries/latest_plan.sql
var LatestPlan string

//go:embed queries/processed_admissions.sql
var ProcessedAdmissions string
