package driver

var IndexQueries = []string{
	"CREATE INDEX ON :EvaluationRun(run_id);",
	"CREATE INDEX ON :EvaluationRecord(id);",
	"CREATE INDEX ON :EvaluationRecord(run_id);",
}

const (
	SaveRunQuery = `
		MERGE (r:EvaluationRun {run_id: $run_id})
		SET r.name = $name,
			r.started_at = $started_at,
			r.upsample_enabled = $upsample_enabled,
			r.params = $params,
			r.attributes = $attributes
		RETURN r.run_id AS run_id
	`

	SaveRecordQuery = `
		MATCH (r:EvaluationRun {run_id: $run_id})
		MERGE (e:EvaluationRecord {id: $id})
		SET e.run_id = $run_id,
			e.row_index = $row_index,
			e.base_prompt = $base_prompt,
			e.category = $category,
			e.upsample_enabled = $upsample_enabled,
			e.final_caption = $final_caption,
			e.score = $score,
			e.verdict = $verdict,
			e.rationale = $rationale,
			e.attempt_count = $attempt_count,
			e.error = $error,
			e.stage = $stage
		MERGE (r)-[:HAS_RECORD]->(e)
		RETURN e.id AS id
	`

	FinishRunQuery = `
		MATCH (r:EvaluationRun {run_id: $run_id})
		SET r.finished_at = $finished_at,
			r.total = $total,
			r.succeeded = $succeeded,
			r.failed = $failed,
			r.cancelled = $cancelled,
			r.mean_score = $mean_score,
			r.median_score = $median_score
		RETURN r.run_id AS run_id
	`
)
