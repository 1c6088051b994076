package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"TitanQuant/internal/analyzer"
	"TitanQuant/internal/collector"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads do not block scheduled writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_history (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			code          TEXT NOT NULL,
			name          TEXT,
			market        TEXT,
			is_etf        INTEGER,
			bars          INTEGER,
			price         REAL,
			ma5           REAL,
			ma20          REAL,
			rsi14         REAL,
			atr14         REAL,
			macd_cross    TEXT,
			volume_ratio  REAL,
			signal        TEXT,
			trend_score   INTEGER,
			reasons       TEXT,
			risk_factors  TEXT,
			stop_loss     REAL,
			take_profit   REAL,
			suggested_buy REAL,
			shares        INTEGER,
			est_cost      REAL,
			error         TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_ts ON analysis_history(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_code ON analysis_history(code)`,

		`CREATE TABLE IF NOT EXISTS market_context (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			status      TEXT,
			index_price REAL,
			index_ma20  REAL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_context_ts ON market_context(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordAnalysis stores one analysis report. Reason lists are stored as
// JSON arrays so the table stays flat.
func (r *SQLiteRecorder) RecordAnalysis(res *analyzer.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		signal       string
		score        int
		reasons      []byte
		riskFactors  []byte
		stopLoss     float64
		takeProfit   float64
		suggestedBuy float64
	)
	if res.Signal != nil {
		signal = res.Signal.Label
		score = res.Signal.TrendScore
		reasons, _ = json.Marshal(res.Signal.Reasons)
		riskFactors, _ = json.Marshal(res.Signal.RiskFactors)
		stopLoss = res.Signal.StopLoss
		takeProfit = res.Signal.TakeProfit
		suggestedBuy = res.Signal.SuggestedBuy
	}
	var shares int
	var cost float64
	if res.RiskCtrl != nil {
		shares = res.RiskCtrl.SuggestedShares
		cost = res.RiskCtrl.EstimatedCost
	}

	tech := res.Technical
	_, err := r.db.Exec(`INSERT INTO analysis_history
		(timestamp, code, name, market, is_etf, bars,
		 price, ma5, ma20, rsi14, atr14, macd_cross, volume_ratio,
		 signal, trend_score, reasons, risk_factors,
		 stop_loss, take_profit, suggested_buy, shares, est_cost, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), res.Code, res.Name, string(res.Market), res.IsETF, res.Bars,
		tech.CurrentPrice, tech.MA5, tech.MA20, tech.RSI14, tech.ATR14,
		tech.MACDCross, tech.VolumeRatio,
		signal, score, string(reasons), string(riskFactors),
		stopLoss, takeProfit, suggestedBuy, shares, cost, res.Err,
	)
	return err
}

func (r *SQLiteRecorder) RecordMarketContext(mc *collector.MarketContext) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO market_context
		(timestamp, status, index_price, index_ma20, error)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), mc.Status, mc.IndexPrice, mc.IndexMA20, mc.Err,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
