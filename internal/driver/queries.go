package driver

var indexQueries = []string{
	"CREATE INDEX ON :Galaxy(name);",
	"CREATE INDEX ON :Run(uuid);",
	"CREATE INDEX ON :Run(session_id);",
}

const (
	SaveGalaxyRunQuery = `
		MERGE (g:Galaxy {name: $galaxy})
		CREATE (r:Run {
			uuid: $uuid,
			session_id: $session_id,
			kind: $kind,
			label: $label,
			rms_kms: $rms_kms,
			points: $points,
			created_at: $created_at
		})
		CREATE (r)-[:EVALUATED {rms_kms: $rms_kms}]->(g)
		RETURN r.uuid AS uuid
	`

	// One Run per bulk call, one EVALUATED edge per galaxy it scored.
	SaveAggregateRunQuery = `
		CREATE (r:Run {
			uuid: $uuid,
			session_id: $session_id,
			kind: $kind,
			label: $label,
			rms_kms: $rms_kms,
			count: $count,
			created_at: $created_at
		})
		WITH r
		UNWIND $per_galaxy AS pg
		MERGE (g:Galaxy {name: pg.galaxy})
		CREATE (r)-[:EVALUATED {rms_kms: pg.rms_kms}]->(g)
		RETURN DISTINCT r.uuid AS uuid
	`

	GalaxyRunsQuery = `
		MATCH (r:Run)-[e:EVALUATED]->(g:Galaxy {name: $galaxy})
		RETURN r.uuid AS uuid,
			r.session_id AS session_id,
			r.kind AS kind,
			r.label AS label,
			e.rms_kms AS rms_kms,
			r.created_at AS created_at
		ORDER BY created_at DESC
		LIMIT $limit
	`
)
