// Package gpxfile reads and writes GPS eXchange (GPX) documents.
//
// Decoding accepts GPX 1.0 and 1.1 (the 1.1 <link> element is folded into
// url/urlname). Encoding always produces GPX 1.0, which keeps url and
// urlname as plain elements.
package gpxfile

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Namespace is the GPX 1.0 namespace written by Encode.
const Namespace = "http://www.topografix.com/GPX/1/0"

// Document is the in-memory form of one GPX file.
type Document struct {
	Creator   string
	Waypoints []Waypoint
	Routes    []Route
	Tracks    []Track
}

// Descriptive holds the text fields shared by waypoints, routes and tracks.
type Descriptive struct {
	Name    string
	Comment string
	Desc    string
	Source  string
	URL     string
	URLName string
}

// Point is a bare coordinate (rtept or trkpt).
type Point struct {
	Lat float64
	Lon float64
}

// Waypoint is a <wpt> element.
type Waypoint struct {
	Descriptive
	Lat    float64
	Lon    float64
	Ele    *float64
	Symbol string
}

// Route is a <rte> element.
type Route struct {
	Descriptive
	Number *int
	Points []Point
}

// Track is a <trk> element.
type Track struct {
	Descriptive
	Number   *int
	Segments [][]Point
}

// ErrInvalidCoordinate indicates coordinate out of valid bounds
type ErrInvalidCoordinate struct {
	Element  string
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid %s coordinate: lat=%f lon=%f (lat must be ±90, lon must be ±180)",
		e.Element, e.Lat, e.Lon)
}

// XML structures for GPX 1.0/1.1

type xmlGPX struct {
	XMLName   xml.Name      `xml:"gpx"`
	Version   string        `xml:"version,attr"`
	Creator   string        `xml:"creator,attr,omitempty"`
	Xmlns     string        `xml:"xmlns,attr,omitempty"`
	Waypoints []xmlWaypoint `xml:"wpt"`
	Routes    []xmlRoute    `xml:"rte"`
	Tracks    []xmlTrack    `xml:"trk"`
}

type xmlLink struct {
	Href string `xml:"href,attr"`
	Text string `xml:"text,omitempty"`
}

type xmlDescriptive struct {
	Name    string    `xml:"name,omitempty"`
	Cmt     string    `xml:"cmt,omitempty"`
	Desc    string    `xml:"desc,omitempty"`
	Src     string    `xml:"src,omitempty"`
	URL     string    `xml:"url,omitempty"`
	URLName string    `xml:"urlname,omitempty"`
	Links   []xmlLink `xml:"link,omitempty"`
}

type xmlPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

type xmlWaypoint struct {
	Lat float64  `xml:"lat,attr"`
	Lon float64  `xml:"lon,attr"`
	Ele *float64 `xml:"ele,omitempty"`
	xmlDescriptive
	Sym string `xml:"sym,omitempty"`
}

type xmlRoute struct {
	xmlDescriptive
	Number *int       `xml:"number,omitempty"`
	Points []xmlPoint `xml:"rtept"`
}

type xmlSegment struct {
	Points []xmlPoint `xml:"trkpt"`
}

type xmlTrack struct {
	xmlDescriptive
	Number   *int         `xml:"number,omitempty"`
	Segments []xmlSegment `xml:"trkseg"`
}

// ParseFile reads and decodes the GPX file at path.
func ParseFile(path string) (*Document, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gpx: %w", err)
	}
	defer file.Close()

	return Decode(file)
}

// Decode decodes one GPX document from r.
func Decode(r io.Reader) (*Document, error) {
	var raw xmlGPX
	if err := xml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode gpx: %w", err)
	}

	doc := &Document{
		Creator:   raw.Creator,
		Waypoints: make([]Waypoint, 0, len(raw.Waypoints)),
		Routes:    make([]Route, 0, len(raw.Routes)),
		Tracks:    make([]Track, 0, len(raw.Tracks)),
	}

	for _, w := range raw.Waypoints {
		if err := checkCoordinate("wpt", w.Lat, w.Lon); err != nil {
			return nil, err
		}
		doc.Waypoints = append(doc.Waypoints, Waypoint{
			Descriptive: w.xmlDescriptive.decode(),
			Lat:         w.Lat,
			Lon:         w.Lon,
			Ele:         w.Ele,
			Symbol:      w.Sym,
		})
	}

	for _, r := range raw.Routes {
		points, err := decodePoints("rtept", r.Points)
		if err != nil {
			return nil, err
		}
		doc.Routes = append(doc.Routes, Route{
			Descriptive: r.xmlDescriptive.decode(),
			Number:      r.Number,
			Points:      points,
		})
	}

	for _, t := range raw.Tracks {
		segments := make([][]Point, 0, len(t.Segments))
		for _, seg := range t.Segments {
			points, err := decodePoints("trkpt", seg.Points)
			if err != nil {
				return nil, err
			}
			segments = append(segments, points)
		}
		doc.Tracks = append(doc.Tracks, Track{
			Descriptive: t.xmlDescriptive.decode(),
			Number:      t.Number,
			Segments:    segments,
		})
	}

	return doc, nil
}

// Encode writes doc to w as an indented GPX 1.0 document.
func Encode(w io.Writer, doc *Document) error {
	raw := xmlGPX{
		Version:   "1.0",
		Creator:   doc.Creator,
		Xmlns:     Namespace,
		Waypoints: make([]xmlWaypoint, 0, len(doc.Waypoints)),
		Routes:    make([]xmlRoute, 0, len(doc.Routes)),
		Tracks:    make([]xmlTrack, 0, len(doc.Tracks)),
	}

	for _, wpt := range doc.Waypoints {
		raw.Waypoints = append(raw.Waypoints, xmlWaypoint{
			Lat:            wpt.Lat,
			Lon:            wpt.Lon,
			Ele:            wpt.Ele,
			xmlDescriptive: encodeDescriptive(wpt.Descriptive),
			Sym:            wpt.Symbol,
		})
	}

	for _, rte := range doc.Routes {
		raw.Routes = append(raw.Routes, xmlRoute{
			xmlDescriptive: encodeDescriptive(rte.Descriptive),
			Number:         rte.Number,
			Points:         encodePoints(rte.Points),
		})
	}

	for _, trk := range doc.Tracks {
		segments := make([]xmlSegment, 0, len(trk.Segments))
		for _, seg := range trk.Segments {
			segments = append(segments, xmlSegment{Points: encodePoints(seg)})
		}
		raw.Tracks = append(raw.Tracks, xmlTrack{
			xmlDescriptive: encodeDescriptive(trk.Descriptive),
			Number:         trk.Number,
			Segments:       segments,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(raw); err != nil {
		return fmt.Errorf("encode gpx: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write trailer: %w", err)
	}
	return nil
}

// Marshal renders doc to bytes.
func Marshal(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d xmlDescriptive) decode() Descriptive {
	out := Descriptive{
		Name:    d.Name,
		Comment: d.Cmt,
		Desc:    d.Desc,
		Source:  d.Src,
		URL:     d.URL,
		URLName: d.URLName,
	}
	// GPX 1.1 carries the url in <link href><text/></link>
	if out.URL == "" && len(d.Links) > 0 {
		out.URL = d.Links[0].Href
		if out.URLName == "" {
			out.URLName = d.Links[0].Text
		}
	}
	return out
}

func encodeDescriptive(d Descriptive) xmlDescriptive {
	return xmlDescriptive{
		Name:    d.Name,
		Cmt:     d.Comment,
		Desc:    d.Desc,
		Src:     d.Source,
		URL:     d.URL,
		URLName: d.URLName,
	}
}

func decodePoints(element string, in []xmlPoint) ([]Point, error) {
	out := make([]Point, 0, len(in))
	for _, p := range in {
		if err := checkCoordinate(element, p.Lat, p.Lon); err != nil {
			return nil, err
		}
		out = append(out, Point{Lat: p.Lat, Lon: p.Lon})
	}
	return out, nil
}

func encodePoints(in []Point) []xmlPoint {
	out := make([]xmlPoint, len(in))
	for i, p := range in {
		out[i] = xmlPoint{Lat: p.Lat, Lon: p.Lon}
	}
	return out
}

// ValidCoordinate reports whether (lat, lon) is a WGS-84 position Decode
// accepts.
func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

func checkCoordinate(element string, lat, lon float64) error {
	if !ValidCoordinate(lat, lon) {
		return &ErrInvalidCoordinate{Element: element, Lat: lat, Lon: lon}
	}
	return nil
}
