package sink

// Explicit field mappings for each target index. Keyword subfields on the
// text fields keep exact-match filtering and aggregation cheap for the
// dashboard layer consuming these indices.
var indexMappings = map[string]string{
	IndexTracks: `{
		"mappings": {
			"properties": {
				"track_id": {"type": "keyword"},
				"persistent_id": {"type": "keyword"},
				"name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"artist": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"album_artist": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"album": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"genre": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"composer": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"kind": {"type": "keyword"},
				"year": {"type": "integer"},
				"bit_rate": {"type": "integer"},
				"sample_rate": {"type": "integer"},
				"track_number": {"type": "integer"},
				"disc_number": {"type": "integer"},
				"play_count": {"type": "integer"},
				"skip_count": {"type": "integer"},
				"rating": {"type": "integer"},
				"total_time_ms": {"type": "long"},
				"size_bytes": {"type": "long"},
				"compilation": {"type": "boolean"},
				"date_added": {"type": "date"},
				"date_modified": {"type": "date"},
				"last_played": {"type": "date"}
			}
		}
	}`,
	IndexArtists: `{
		"mappings": {
			"properties": {
				"name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"track_count": {"type": "integer"},
				"album_count": {"type": "integer"},
				"total_play_count": {"type": "integer"},
				"average_rating": {"type": "float"},
				"total_time_ms": {"type": "long"},
				"genres": {"type": "keyword"}
			}
		}
	}`,
	IndexAlbums: `{
		"mappings": {
			"properties": {
				"artist": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"album": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"track_count": {"type": "integer"},
				"year": {"type": "integer"},
				"total_play_count": {"type": "integer"},
				"average_rating": {"type": "float"},
				"average_bit_rate": {"type": "float"},
				"total_time_ms": {"type": "long"}
			}
		}
	}`,
	IndexGenres: `{
		"mappings": {
			"properties": {
				"name": {"type": "text", "fields": {"keyword": {"type": "keyword"}}},
				"artist_count": {"type": "integer"},
				"album_count": {"type": "integer"},
				"track_count": {"type": "integer"},
				"total_play_count": {"type": "integer"},
				"average_rating": {"type": "float"},
				"total_time_ms": {"type": "long"}
			}
		}
	}`,
}
