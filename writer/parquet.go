package writer

import (
	"bytes"
	"fmt"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"

	"cotflow/internal/models"
	"cotflow/logger"
)

// ParquetRecord represents the structure of our parquet file. It carries
// the enriched columns alongside the canonical ones so downstream
// consumers do not need to re-run enrichment.
type ParquetRecord struct {
	ReferenceDate string `parquet:"name=data_referencia, type=BYTE_ARRAY, convertedtype=UTF8"`
	Asset         string `parquet:"name=nome_ativo, type=BYTE_ARRAY, convertedtype=UTF8"`
	FriendlyName  string `parquet:"name=nome_amigavel, type=BYTE_ARRAY, convertedtype=UTF8"`
	Sector        string `parquet:"name=setor, type=BYTE_ARRAY, convertedtype=UTF8"`
	Exchange      string `parquet:"name=bolsa, type=BYTE_ARRAY, convertedtype=UTF8"`
	ShortCode     string `parquet:"name=codigo, type=BYTE_ARRAY, convertedtype=UTF8"`
	Long          int64  `parquet:"name=comprados, type=INT64"`
	Short         int64  `parquet:"name=vendidos, type=INT64"`
	Net           int64  `parquet:"name=posicao_liquida, type=INT64"`
	Sentiment     string `parquet:"name=sentimento, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// memoryFileWriter implements ParquetFile interface for in-memory writing
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{
		buffer: &bytes.Buffer{},
	}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	// Writing is append-only here; the parquet writer never seeks back.
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error) {
	return mfw.buffer.Read(b)
}

func (mfw *memoryFileWriter) Write(b []byte) (int, error) {
	return mfw.buffer.Write(b)
}

func (mfw *memoryFileWriter) Close() error {
	return nil
}

func (mfw *memoryFileWriter) Bytes() []byte {
	return mfw.buffer.Bytes()
}

// ParquetEncoder renders a snapshot into an in-memory parquet document.
type ParquetEncoder struct {
	compression string
	log         *logger.Log
}

func NewParquetEncoder(compression string) *ParquetEncoder {
	return &ParquetEncoder{
		compression: compression,
		log:         logger.GetLogger(),
	}
}

func (p *ParquetEncoder) Encode(snapshot *models.Snapshot) ([]byte, error) {
	log := p.log.WithComponent("parquet_encoder").WithFields(logger.Fields{
		"record_count": len(snapshot.Records),
		"operation":    "encode",
	})

	fw := newMemoryFileWriter()

	pw, err := writer.NewParquetWriter(fw, new(ParquetRecord), 4)
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet writer: %w", err)
	}

	switch p.compression {
	case "snappy":
		pw.CompressionType = parquet.CompressionCodec_SNAPPY
	case "gzip":
		pw.CompressionType = parquet.CompressionCodec_GZIP
	case "lzo":
		pw.CompressionType = parquet.CompressionCodec_LZO
	default:
		pw.CompressionType = parquet.CompressionCodec_UNCOMPRESSED
	}

	for _, rec := range snapshot.Records {
		record := ParquetRecord{
			ReferenceDate: rec.ReferenceDate.Format("2006-01-02"),
			Asset:         rec.AssetIdentifier,
			FriendlyName:  rec.Enrichment.FriendlyName,
			Sector:        rec.Enrichment.Sector,
			Exchange:      rec.Enrichment.Exchange,
			ShortCode:     rec.Enrichment.ShortCode,
			Long:          rec.LongCount,
			Short:         rec.ShortCount,
			Net:           rec.NetPosition(),
			Sentiment:     string(rec.Sentiment()),
		}

		if err := pw.Write(record); err != nil {
			pw.WriteStop()
			return nil, fmt.Errorf("failed to write parquet record: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return nil, fmt.Errorf("failed to finalize parquet writing: %w", err)
	}

	data := fw.Bytes()

	log.WithFields(logger.Fields{
		"file_size":   len(data),
		"compression": p.compression,
	}).Info("parquet document created")

	logger.RecordSinkWrite("parquet", len(data))
	return data, nil
}
