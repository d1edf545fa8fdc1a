// Package export writes persisted sweeps in columnar formats for analysis
// outside ezdiff.
package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/ezdiff/internal/store"
)

// Row is one (run, sample size) pair, flattened.
type Row struct {
	RunID       int64
	Seed        uint64
	A           float64
	V           float64
	T           float64
	N           int64
	Bias        float64
	BiasSquared float64
}

// Schema is the Arrow schema of an export file. Biases may be NaN.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: "run_id", Type: arrow.PrimitiveTypes.Int64},
	{Name: "seed", Type: arrow.PrimitiveTypes.Uint64},
	{Name: "a", Type: arrow.PrimitiveTypes.Float64},
	{Name: "v", Type: arrow.PrimitiveTypes.Float64},
	{Name: "t", Type: arrow.PrimitiveTypes.Float64},
	{Name: "n", Type: arrow.PrimitiveTypes.Int64},
	{Name: "bias", Type: arrow.PrimitiveTypes.Float64},
	{Name: "bias_squared", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// Flatten turns runs into one Row per result, preserving run then sweep order.
func Flatten(runs []store.Run) []Row {
	var rows []Row
	for _, run := range runs {
		for _, r := range run.Results {
			rows = append(rows, Row{
				RunID:       run.ID,
				Seed:        run.Seed,
				A:           run.Params.A,
				V:           run.Params.V,
				T:           run.Params.T,
				N:           int64(r.N),
				Bias:        r.Bias,
				BiasSquared: r.BiasSquared,
			})
		}
	}
	return rows
}

// WriteArrow writes runs to w as an Arrow IPC file containing a single
// record batch. The file footer is written after the batch, so w must be
// seekable. It returns the number of rows written.
func WriteArrow(w io.WriteSeeker, runs []store.Run) (int, error) {
	mem := memory.NewGoAllocator()
	rows := Flatten(runs)

	b := array.NewRecordBuilder(mem, Schema)
	defer b.Release()

	runIDs := b.Field(0).(*array.Int64Builder)
	seeds := b.Field(1).(*array.Uint64Builder)
	as := b.Field(2).(*array.Float64Builder)
	vs := b.Field(3).(*array.Float64Builder)
	ts := b.Field(4).(*array.Float64Builder)
	ns := b.Field(5).(*array.Int64Builder)
	biases := b.Field(6).(*array.Float64Builder)
	biasSqs := b.Field(7).(*array.Float64Builder)

	for _, r := range rows {
		runIDs.Append(r.RunID)
		seeds.Append(r.Seed)
		as.Append(r.A)
		vs.Append(r.V)
		ts.Append(r.T)
		ns.Append(r.N)
		biases.Append(r.Bias)
		biasSqs.Append(r.BiasSquared)
	}

	rec := b.NewRecord()
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(Schema), ipc.WithAllocator(mem))
	if err != nil {
		return 0, fmt.Errorf("failed to create arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		fw.Close()
		return 0, fmt.Errorf("failed to write record batch: %w", err)
	}
	if err := fw.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize arrow file: %w", err)
	}
	return len(rows), nil
}

// ReadArrow reads every row of an Arrow IPC file written by WriteArrow.
func ReadArrow(r ipc.ReadAtSeeker) ([]Row, error) {
	mem := memory.NewGoAllocator()
	fr, err := ipc.NewFileReader(r, ipc.WithSchema(Schema), ipc.WithAllocator(mem))
	if err != nil {
		return nil, fmt.Errorf("failed to open arrow file: %w", err)
	}
	defer fr.Close()

	if !fr.Schema().Equal(Schema) {
		return nil, fmt.Errorf("unexpected schema: %s", fr.Schema())
	}

	var rows []Row
	for i := 0; i < fr.NumRecords(); i++ {
		rec, err := fr.Record(i)
		if err != nil {
			return nil, fmt.Errorf("failed to read record batch %d: %w", i, err)
		}

		runIDs := rec.Column(0).(*array.Int64)
		seeds := rec.Column(1).(*array.Uint64)
		as := rec.Column(2).(*array.Float64)
		vs := rec.Column(3).(*array.Float64)
		ts := rec.Column(4).(*array.Float64)
		ns := rec.Column(5).(*array.Int64)
		biases := rec.Column(6).(*array.Float64)
		biasSqs := rec.Column(7).(*array.Float64)

		for j := 0; j < int(rec.NumRows()); j++ {
			rows = append(rows, Row{
				RunID:       runIDs.Value(j),
				Seed:        seeds.Value(j),
				A:           as.Value(j),
				V:           vs.Value(j),
				T:           ts.Value(j),
				N:           ns.Value(j),
				Bias:        biases.Value(j),
				BiasSquared: biasSqs.Value(j),
			})
		}
	}
	return rows, nil
}
