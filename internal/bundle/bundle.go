// Package bundle reads and writes plan bundles: a single JSON document
// carrying the dose-influence operators, the radiosensitivity coefficients,
// and the structure set. Bundles with a .zst suffix are zstd-compressed,
// since dose-influence matrices get large for clinical voxel grids.
package bundle

import (
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/mat"

	"github.com/voxelplan-labs/voxelplan/internal/plan"
)

// Document is the on-disk bundle layout. Matrices are stored row-major.
type Document struct {
	Voxels       int               `json:"num_voxels"`
	Beamlets     int               `json:"num_beamlets"`
	AlphaDose    []float64         `json:"alpha_dose"`
	SqrtBetaDose []float64         `json:"sqrt_beta_dose"`
	PhysicalDose []float64         `json:"physical_dose"`
	Ax           []float64         `json:"ax"`
	Bx           []float64         `json:"bx"`
	Structures   plan.StructureSet `json:"structures"`
}

// Decode unmarshals a bundle document and validates it into the typed plan
// model. Validation happens here, once, so the evaluator never re-checks
// dimensions per call.
func Decode(data []byte) (*plan.DoseInfluence, plan.StructureSet, error) {
	var doc Document
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("unmarshal bundle: %w", err)
	}

	if doc.Voxels <= 0 || doc.Beamlets <= 0 {
		return nil, nil, fmt.Errorf("bundle: invalid dimensions %dx%d", doc.Voxels, doc.Beamlets)
	}

	cells := doc.Voxels * doc.Beamlets
	for name, m := range map[string][]float64{
		"alpha_dose":     doc.AlphaDose,
		"sqrt_beta_dose": doc.SqrtBetaDose,
		"physical_dose":  doc.PhysicalDose,
	} {
		if len(m) != cells {
			return nil, nil, fmt.Errorf("bundle: %s has %d values, want %d", name, len(m), cells)
		}
	}

	model := &plan.DoseInfluence{
		AlphaDose:    mat.NewDense(doc.Voxels, doc.Beamlets, doc.AlphaDose),
		SqrtBetaDose: mat.NewDense(doc.Voxels, doc.Beamlets, doc.SqrtBetaDose),
		PhysicalDose: mat.NewDense(doc.Voxels, doc.Beamlets, doc.PhysicalDose),
		Ax:           doc.Ax,
		Bx:           doc.Bx,
	}
	if err := model.Validate(); err != nil {
		return nil, nil, err
	}
	if err := doc.Structures.Validate(doc.Voxels); err != nil {
		return nil, nil, err
	}

	log.Debug().Int("voxels", doc.Voxels).Int("beamlets", doc.Beamlets).Int("structures", len(doc.Structures)).Msg("bundle decoded")
	return model, doc.Structures, nil
}

// Load reads a bundle from disk, transparently decompressing .zst files.
func Load(path string) (*plan.DoseInfluence, plan.StructureSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read bundle: %w", err)
	}

	if strings.HasSuffix(path, ".zst") {
		data, err = decompress(data)
		if err != nil {
			return nil, nil, err
		}
	}
	return Decode(data)
}

// Save writes a bundle to disk, compressing when the path ends in .zst.
// Mainly used by tooling that converts planning-system exports.
func Save(path string, model *plan.DoseInfluence, set plan.StructureSet) error {
	voxels, beamlets := model.Voxels(), model.Beamlets()
	doc := Document{
		Voxels:       voxels,
		Beamlets:     beamlets,
		AlphaDose:    rawRowMajor(model.AlphaDose),
		SqrtBetaDose: rawRowMajor(model.SqrtBetaDose),
		PhysicalDose: rawRowMajor(model.PhysicalDose),
		Ax:           model.Ax,
		Bx:           model.Bx,
		Structures:   set,
	}

	data, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}
	if strings.HasSuffix(path, ".zst") {
		data, err = compress(data)
		if err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func rawRowMajor(m *mat.Dense) []float64 {
	return m.RawMatrix().Data
}

func decompress(data []byte) ([]byte, error) {
	r, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to create reader: %w", err)
	}
	defer r.Close()
	out, err := r.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to decompress bundle: %w", err)
	}
	return out, nil
}

func compress(data []byte) ([]byte, error) {
	w, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd: failed to create writer: %w", err)
	}
	defer w.Close()
	return w.EncodeAll(data, nil), nil
}
