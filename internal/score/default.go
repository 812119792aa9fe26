package score

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"git.lost.host/meutraa/eotw/internal/replay"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Store keeps local scores, replays and per-chart offsets in sqlite.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

const schema = `
create table if not exists scores
  (
	  id integer not null primary key,
	  sum text not null,
	  rate real,
	  hits integer,
	  misses integer,
	  mean_error real,
	  failed integer,
	  pauses integer,
	  played_at integer,
	  replay_id integer
  );
create index if not exists scores_sum on scores(sum);
create table if not exists replays
  (
	  id integer not null primary key,
	  sum text not null,
	  data blob
  );
create table if not exists offsets
  (
	  sum text not null primary key,
	  ms integer not null
  );
`

func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if nil != err {
		return nil, fmt.Errorf("unable to open score database: %w", err)
	}
	if _, err := db.Exec(schema); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to create score tables: %w", err)
	}
	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) SaveScore(r Record) (int64, error) {
	res, err := s.db.Exec(
		"insert into scores(sum, rate, hits, misses, mean_error, failed, pauses, played_at, replay_id) values(?, ?, ?, ?, ?, ?, ?, ?, ?)",
		r.Chart, r.Rate, r.Hits, r.Misses, r.MeanError, r.Failed, r.Pauses, r.PlayedAt.Unix(), r.ReplayID,
	)
	if nil != err {
		return 0, fmt.Errorf("unable to save score: %w", err)
	}
	return res.LastInsertId()
}

// Scores for a chart, newest first.
func (s *Store) Scores(chart string) ([]Record, error) {
	rows, err := s.db.Query(
		"select id, sum, rate, hits, misses, mean_error, failed, pauses, played_at, replay_id from scores where sum = ? order by played_at desc, id desc",
		chart,
	)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var r Record
		var playedAt int64
		if err := rows.Scan(&r.ID, &r.Chart, &r.Rate, &r.Hits, &r.Misses, &r.MeanError, &r.Failed, &r.Pauses, &playedAt, &r.ReplayID); nil != err {
			s.log.Warn().Err(err).Msg("skipping unreadable score")
			continue
		}
		r.PlayedAt = time.Unix(playedAt, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) SaveReplay(r *replay.Replay) (int64, error) {
	data, err := replay.Marshal(r)
	if nil != err {
		return 0, err
	}
	res, err := s.db.Exec("insert into replays(sum, data) values(?, ?)", r.Chart, data)
	if nil != err {
		return 0, fmt.Errorf("unable to save replay: %w", err)
	}
	return res.LastInsertId()
}

func (s *Store) Replay(id int64) (*replay.Replay, error) {
	var data []byte
	err := s.db.QueryRow("select data from replays where id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("replay %v not found", id)
	} else if nil != err {
		return nil, fmt.Errorf("unable to load replay %v: %w", id, err)
	}
	return replay.Unmarshal(data)
}

func (s *Store) SaveOffset(chart string, offset int) error {
	_, err := s.db.Exec(
		"insert into offsets(sum, ms) values(?, ?) on conflict(sum) do update set ms = excluded.ms",
		chart, offset,
	)
	if nil != err {
		return fmt.Errorf("unable to save offset: %w", err)
	}
	return nil
}

// Offset returns the local offset of a chart, 0 if none was saved.
func (s *Store) Offset(chart string) (int, error) {
	var offset int
	err := s.db.QueryRow("select ms from offsets where sum = ?", chart).Scan(&offset)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	} else if nil != err {
		return 0, fmt.Errorf("unable to load offset: %w", err)
	}
	return offset, nil
}
