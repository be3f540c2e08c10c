package threemf

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
)

// keyValue is the <metadata key="" value=""/> element both Bambu
// config documents are built from.
type keyValue struct {
	Key   string `xml:"key,attr"`
	Value string `xml:"value,attr"`
}

type modelSettingsDoc struct {
	XMLName xml.Name `xml:"config"`
	Plate   struct {
		Metadata []keyValue `xml:"metadata"`
	} `xml:"plate"`
}

// buildModelSettings produces model_settings.config, the plate and
// file-reference index Bambu Studio reads first.
func buildModelSettings(p Plate) ([]byte, error) {
	var doc modelSettingsDoc
	doc.Plate.Metadata = []keyValue{
		{"plater_id", fmt.Sprintf("%d", p.Number)},
		{"plater_name", ""},
		{"locked", "false"},
		{"gcode_file", p.gcodePath()},
		{"thumbnail_file", p.thumbnailPath()},
		{"thumbnail_no_light_file", p.thumbnailPath()},
		{"top_file", p.pickPath()},
		{"pick_file", p.pickPath()},
	}
	return marshalConfigXML(doc, PathModelSettings)
}

type sliceInfoDoc struct {
	XMLName xml.Name `xml:"config"`
	Header  struct {
		Items []keyValue `xml:"header_item"`
	} `xml:"header"`
	Plate struct {
		Metadata []keyValue    `xml:"metadata"`
		Filament sliceFilament `xml:"filament"`
	} `xml:"plate"`
}

type sliceFilament struct {
	ID          string `xml:"id,attr"`
	TrayInfoIdx string `xml:"tray_info_idx,attr"`
	Type        string `xml:"type,attr"`
	Color       string `xml:"color,attr"`
	UsedM       string `xml:"used_m,attr"`
	UsedG       string `xml:"used_g,attr"`
}

// buildSliceInfo produces slice_info.config, the slice metadata and
// statistics document.
func buildSliceInfo(cfg ExportConfig, p Plate) ([]byte, error) {
	var doc sliceInfoDoc
	doc.Header.Items = []keyValue{
		{"X-BBL-Client-Type", "slicer"},
		{"X-BBL-Client-Version", "01.09.07.52"},
	}
	doc.Plate.Metadata = []keyValue{
		{"index", fmt.Sprintf("%d", p.Number)},
		{"printer_model_id", cfg.PrinterModelID},
		{"nozzle_diameters", fmt.Sprintf("%g", cfg.NozzleDiameter)},
		{"timelapse_type", "0"},
		{"prediction", fmt.Sprintf("%d", p.PredictionSeconds)},
		{"weight", fmt.Sprintf("%.2f", p.WeightG)},
		{"outside", "false"},
		{"support_used", "false"},
		{"label_object_enabled", "false"},
	}
	doc.Plate.Filament = sliceFilament{
		ID:          "1",
		TrayInfoIdx: "GFA00",
		Type:        cfg.FilamentType,
		Color:       cfg.FilamentColor,
		UsedM:       fmt.Sprintf("%.2f", p.FilamentUsedM),
		UsedG:       fmt.Sprintf("%.2f", p.WeightG),
	}
	return marshalConfigXML(doc, PathSliceInfo)
}

// buildProjectSettings produces project_settings.config, the printer
// and print profile document. Only the settings Bambu Studio needs to
// open the project are written; the slicer-side profile fields carry
// stock X1 Carbon values.
func buildProjectSettings(cfg ExportConfig) ([]byte, error) {
	settings := map[string]any{
		"from":                     "project",
		"curr_bed_type":            cfg.BedType,
		"default_print_profile":    fmt.Sprintf("%.2fmm Standard @BBL X1C", cfg.LayerHeight),
		"default_filament_profile": []string{fmt.Sprintf("Bambu %s Basic @BBL X1C", cfg.FilamentType)},

		"layer_height":               fmt.Sprintf("%g", cfg.LayerHeight),
		"initial_layer_print_height": fmt.Sprintf("%g", cfg.LayerHeight),

		"hot_plate_temp":                []string{fmt.Sprintf("%d", cfg.BedTemp)},
		"hot_plate_temp_initial_layer":  []string{fmt.Sprintf("%d", cfg.BedTemp)},
		"cool_plate_temp":               []string{fmt.Sprintf("%d", cfg.BedTemp)},
		"cool_plate_temp_initial_layer": []string{fmt.Sprintf("%d", cfg.BedTemp)},
		"nozzle_temperature":            []string{fmt.Sprintf("%d", cfg.NozzleTemp)},
		"chamber_temperatures":          []string{"0"},

		"filament_type":        []string{cfg.FilamentType},
		"filament_colour":      []string{cfg.FilamentColor},
		"filament_vendor":      []string{cfg.FilamentVendor},
		"filament_diameter":    []string{fmt.Sprintf("%g", cfg.FilamentDiameter)},
		"filament_density":     []string{fmt.Sprintf("%g", cfg.FilamentDensity)},
		"filament_settings_id": []string{fmt.Sprintf("Bambu %s Basic @BBL X1C", cfg.FilamentType)},
		"filament_ids":         []string{"GFA00"},

		"printer_settings_id": cfg.Printer,
		"printer_model":       cfg.PrinterModel,
		"nozzle_diameter":     []string{fmt.Sprintf("%g", cfg.NozzleDiameter)},
		"gcode_flavor":        "marlin",

		"enable_support":     "0",
		"enable_prime_tower": "0",
		"wall_loops":         "2",
		"sparse_infill_density": "15%",
	}

	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return nil, &PackagingError{Op: "marshal settings", Path: PathProjectSettings, Err: err}
	}
	return append(data, '\n'), nil
}

func marshalConfigXML(doc any, path string) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, &PackagingError{Op: "marshal config", Path: path, Err: err}
	}
	var b strings.Builder
	b.WriteString(xml.Header)
	b.Write(body)
	b.WriteString("\n")
	return []byte(b.String()), nil
}
