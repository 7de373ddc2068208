package writer

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cotflow/internal/models"
	"cotflow/logger"
)

const defaultReportTable = "TB_COT_REPORT"

// ReportRow is the relational projection of a canonical record.
type ReportRow struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	ReferenceDate time.Time `gorm:"column:data_referencia;type:date;index"`
	Asset         string    `gorm:"column:nome_ativo;size:255;index"`
	FriendlyName  string    `gorm:"column:nome_amigavel;size:255"`
	Sector        string    `gorm:"column:setor;size:128"`
	Exchange      string    `gorm:"column:bolsa;size:128"`
	ShortCode     string    `gorm:"column:codigo;size:32"`
	Long          int64     `gorm:"column:comprados"`
	Short         int64     `gorm:"column:vendidos"`
	Net           int64     `gorm:"column:posicao_liquida"`
	Sentiment     string    `gorm:"column:sentimento;size:32"`
}

// DatabaseWriter mirrors the canonical dataset into a MySQL table. Each
// publish drops and recreates the table so the table always holds
// exactly one snapshot.
type DatabaseWriter struct {
	db    *gorm.DB
	table string
	log   *logger.Log
}

func NewDatabaseWriter(dsn, table string) (*DatabaseWriter, error) {
	if table == "" {
		table = defaultReportTable
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &DatabaseWriter{
		db:    db,
		table: table,
		log:   logger.GetLogger(),
	}, nil
}

// Replace swaps the table contents for the snapshot's records.
func (w *DatabaseWriter) Replace(snapshot *models.Snapshot) error {
	log := w.log.WithComponent("database_writer").WithFields(logger.Fields{
		"table":        w.table,
		"record_count": len(snapshot.Records),
	})

	rows := make([]ReportRow, 0, len(snapshot.Records))
	for _, rec := range snapshot.Records {
		rows = append(rows, ReportRow{
			ReferenceDate: rec.ReferenceDate,
			Asset:         rec.AssetIdentifier,
			FriendlyName:  rec.Enrichment.FriendlyName,
			Sector:        rec.Enrichment.Sector,
			Exchange:      rec.Enrichment.Exchange,
			ShortCode:     rec.Enrichment.ShortCode,
			Long:          rec.LongCount,
			Short:         rec.ShortCount,
			Net:           rec.NetPosition(),
			Sentiment:     string(rec.Sentiment()),
		})
	}

	scoped := w.db.Table(w.table)
	migrator := scoped.Migrator()

	if migrator.HasTable(w.table) {
		if err := migrator.DropTable(w.table); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", w.table, err)
		}
	}
	if err := scoped.AutoMigrate(&ReportRow{}); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}

	if len(rows) > 0 {
		if err := w.db.Table(w.table).CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("failed to insert report rows: %w", err)
		}
	}

	logger.RecordSinkWrite("database", len(rows))
	log.Info("report table replaced")
	return nil
}
