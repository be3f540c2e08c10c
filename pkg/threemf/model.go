package threemf

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/printforge/nodeslicer/pkg/mesh"
)

// XML namespaces for the model document.
const (
	nsCore       = "http://schemas.microsoft.com/3dmanufacturing/core/2015/02"
	nsProduction = "http://schemas.microsoft.com/3dmanufacturing/production/2015/06"
)

// identityTransform is the row-major 4x3 matrix for an untransformed
// build item.
const identityTransform = "1 0 0 0 1 0 0 0 1 0 0 0"

type modelDoc struct {
	XMLName      xml.Name       `xml:"model"`
	Unit         string         `xml:"unit,attr"`
	Lang         string         `xml:"xml:lang,attr"`
	Xmlns        string         `xml:"xmlns,attr"`
	XmlnsP       string         `xml:"xmlns:p,attr"`
	RequiredExt  string         `xml:"requiredextensions,attr"`
	UUID         string         `xml:"p:UUID,attr"`
	Metadata     []metadataElem `xml:"metadata"`
	Resources    resourcesElem  `xml:"resources"`
	Build        buildElem      `xml:"build"`
}

type metadataElem struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type resourcesElem struct {
	Objects []objectElem `xml:"object"`
}

type objectElem struct {
	ID   int      `xml:"id,attr"`
	Type string   `xml:"type,attr"`
	UUID string   `xml:"p:UUID,attr"`
	Mesh meshElem `xml:"mesh"`
}

type meshElem struct {
	Vertices  verticesElem  `xml:"vertices"`
	Triangles trianglesElem `xml:"triangles"`
}

type verticesElem struct {
	Vertices []vertexElem `xml:"vertex"`
}

type vertexElem struct {
	X float32 `xml:"x,attr"`
	Y float32 `xml:"y,attr"`
	Z float32 `xml:"z,attr"`
}

type trianglesElem struct {
	Triangles []triangleElem `xml:"triangle"`
}

type triangleElem struct {
	V1 uint32 `xml:"v1,attr"`
	V2 uint32 `xml:"v2,attr"`
	V3 uint32 `xml:"v3,attr"`
}

type buildElem struct {
	UUID  string     `xml:"p:UUID,attr"`
	Items []itemElem `xml:"item"`
}

type itemElem struct {
	ObjectID  int    `xml:"objectid,attr"`
	UUID      string `xml:"p:UUID,attr"`
	Transform string `xml:"transform,attr"`
}

// buildModelDoc serializes the model document: one mesh object, one
// build item, production-extension UUIDs on every tracked element.
func buildModelDoc(cfg ExportConfig, ids *IDTable, m *mesh.Mesh) ([]byte, error) {
	const objectID = 1

	doc := modelDoc{
		Unit:        "millimeter",
		Lang:        "en-US",
		Xmlns:       nsCore,
		XmlnsP:      nsProduction,
		RequiredExt: "p",
		UUID:        ids.Model(),
		Metadata: []metadataElem{
			{Name: "Application", Value: fmt.Sprintf("%s-%s", cfg.Application, cfg.ApplicationVersion)},
			{Name: "Title", Value: cfg.Title},
		},
		Build: buildElem{
			UUID: ids.Build(),
			Items: []itemElem{{
				ObjectID:  objectID,
				UUID:      ids.Item(0),
				Transform: identityTransform,
			}},
		},
	}

	obj := objectElem{ID: objectID, Type: "model", UUID: ids.Object(objectID)}
	for i := 0; i < m.VertexCount(); i++ {
		x, y, z := m.Vertex(i)
		obj.Mesh.Vertices.Vertices = append(obj.Mesh.Vertices.Vertices, vertexElem{X: x, Y: y, Z: z})
	}
	for i := 0; i < m.TriangleCount(); i++ {
		obj.Mesh.Triangles.Triangles = append(obj.Mesh.Triangles.Triangles, triangleElem{
			V1: m.Indices[i*3],
			V2: m.Indices[i*3+1],
			V3: m.Indices[i*3+2],
		})
	}
	doc.Resources.Objects = []objectElem{obj}

	body, err := xml.MarshalIndent(doc, "", " ")
	if err != nil {
		return nil, &PackagingError{Op: "marshal model", Path: PathModel, Err: err}
	}

	var b strings.Builder
	b.WriteString(xml.Header)
	b.Write(body)
	b.WriteString("\n")
	return []byte(b.String()), nil
}
