// Package threemf assembles production-tracked 3MF archives in the
// layout Bambu Studio expects: the model document plus G-code, MD5
// sidecars, thumbnails, and the three Bambu config documents under
// Metadata/.
package threemf

import (
	"archive/zip"
	"fmt"
	"io"

	"github.com/printforge/nodeslicer/pkg/mesh"
)

// Fixed archive paths.
const (
	PathContentTypes    = "[Content_Types].xml"
	PathRels            = "_rels/.rels"
	PathModel           = "3D/3dmodel.model"
	PathModelSettings   = "Metadata/model_settings.config"
	PathProjectSettings = "Metadata/project_settings.config"
	PathSliceInfo       = "Metadata/slice_info.config"
)

// ExportConfig carries the archive-level settings: project metadata
// plus the printer and filament identity written into the Bambu config
// documents.
type ExportConfig struct {
	Title              string
	Application        string
	ApplicationVersion string

	Printer        string
	PrinterModel   string
	PrinterModelID string
	NozzleDiameter float64
	BedType        string

	FilamentType     string
	FilamentColor    string
	FilamentVendor   string
	FilamentDiameter float64
	FilamentDensity  float64

	LayerHeight float64
	NozzleTemp  int
	BedTemp     int
}

// DefaultExportConfig returns settings for a stock Bambu Lab X1 Carbon
// printing PLA.
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		Title:              "Untitled",
		Application:        "NodeSlicer",
		ApplicationVersion: "0.1.0",
		Printer:            "Bambu Lab X1 Carbon 0.4 nozzle",
		PrinterModel:       "Bambu Lab X1 Carbon",
		PrinterModelID:     "BL-P001",
		NozzleDiameter:     0.4,
		BedType:            "Textured PEI Plate",
		FilamentType:       "PLA",
		FilamentColor:      "#FFFFFF",
		FilamentVendor:     "Bambu Lab",
		FilamentDiameter:   1.75,
		FilamentDensity:    1.24,
		LayerHeight:        0.2,
		NozzleTemp:         220,
		BedTemp:            55,
	}
}

// Plate is the per-plate payload: the emitted G-code, its thumbnails,
// and the statistics surfaced in slice_info.config.
type Plate struct {
	Number            int
	GCode             []byte
	Thumbnail         []byte
	ThumbnailSmall    []byte
	Pick              []byte
	PredictionSeconds int
	WeightG           float64
	FilamentUsedM     float64
}

func (p Plate) gcodePath() string     { return fmt.Sprintf("Metadata/plate_%d.gcode", p.Number) }
func (p Plate) thumbnailPath() string { return fmt.Sprintf("Metadata/plate_%d.png", p.Number) }
func (p Plate) thumbnailSmallPath() string {
	return fmt.Sprintf("Metadata/plate_%d_small.png", p.Number)
}
func (p Plate) pickPath() string { return fmt.Sprintf("Metadata/pick_%d.png", p.Number) }

// Archive is a fully assembled 3MF package ready to be written.
type Archive struct {
	Config   ExportConfig
	IDs      *IDTable
	Manifest Manifest
}

// Build assembles the complete archive for one plate.
func Build(cfg ExportConfig, m *mesh.Mesh, plate Plate) (*Archive, error) {
	if plate.Number <= 0 {
		plate.Number = 1
	}

	a := &Archive{Config: cfg, IDs: NewIDTable()}

	model, err := buildModelDoc(cfg, a.IDs, m)
	if err != nil {
		return nil, err
	}
	modelSettings, err := buildModelSettings(plate)
	if err != nil {
		return nil, err
	}
	projectSettings, err := buildProjectSettings(cfg)
	if err != nil {
		return nil, err
	}
	sliceInfo, err := buildSliceInfo(cfg, plate)
	if err != nil {
		return nil, err
	}

	add := func(errs ...error) error {
		for _, e := range errs {
			if e != nil {
				return e
			}
		}
		return nil
	}
	if err := add(
		a.Manifest.Add(PathContentTypes, ContentTypeXML, []byte(contentTypesXML)),
		a.Manifest.Add(PathRels, ContentTypeRels, []byte(relsXML)),
		a.Manifest.Add(PathModel, ContentTypeModel, model),
		a.Manifest.AddWithMD5(plate.gcodePath(), ContentTypeGCode, plate.GCode),
		a.Manifest.Add(PathModelSettings, ContentTypeXML, modelSettings),
		a.Manifest.Add(PathProjectSettings, ContentTypeJSON, projectSettings),
		a.Manifest.Add(PathSliceInfo, ContentTypeXML, sliceInfo),
		a.Manifest.Add(plate.thumbnailPath(), ContentTypePNG, plate.Thumbnail),
		a.Manifest.Add(plate.thumbnailSmallPath(), ContentTypePNG, plate.ThumbnailSmall),
		a.Manifest.Add(plate.pickPath(), ContentTypePNG, plate.Pick),
	); err != nil {
		return nil, err
	}
	return a, nil
}

// Write serializes the archive as a ZIP container.
func (a *Archive) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	for _, part := range a.Manifest.Parts() {
		f, err := zw.Create(part.Path)
		if err != nil {
			return &PackagingError{Op: "create entry", Path: part.Path, Err: err}
		}
		if _, err := f.Write(part.Data); err != nil {
			return &PackagingError{Op: "write entry", Path: part.Path, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return &PackagingError{Op: "close archive", Err: err}
	}
	return nil
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
 <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
 <Default Extension="model" ContentType="application/vnd.ms-package.3dmanufacturing-3dmodel+xml"/>
 <Default Extension="png" ContentType="image/png"/>
 <Default Extension="gcode" ContentType="text/x.gcode"/>
</Types>
`

const relsXML = `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
 <Relationship Target="/3D/3dmodel.model" Id="rel-1" Type="http://schemas.microsoft.com/3dmanufacturing/2013/01/3dmodel"/>
 <Relationship Target="/Metadata/plate_1.png" Id="rel-2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/thumbnail"/>
</Relationships>
`
