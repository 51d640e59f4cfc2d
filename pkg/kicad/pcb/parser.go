package pcb

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/OpenTraceLab/OpenTraceRoute/pkg/kicad/sexp/kicadsexp"
)

// Minimum supported KiCad version (6.0 = 20211014)
const MinSupportedVersion = 20211014

var (
	// ErrNotBoard is returned when the root expression is not kicad_pcb.
	ErrNotBoard = errors.New("pcb: not a KiCad PCB file")
	// ErrUnsupportedVersion is returned for files older than KiCad 6.
	ErrUnsupportedVersion = errors.New("pcb: unsupported KiCad version")
)

// Parser handles parsing of KiCad board files
type Parser struct {
	logger *slog.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger used for warnings about skipped objects.
func WithLogger(l *slog.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewParser creates a new KiCad board parser
func NewParser(opts ...Option) *Parser {
	p := &Parser{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseFile reads and parses a KiCad board file
func ParseFile(filename string) (*Board, error) {
	return NewParser().ParseFile(filename)
}

// Parse reads and parses a KiCad board from an io.Reader
func Parse(r io.Reader) (*Board, error) {
	return NewParser().Parse(r)
}

// ParseFile reads and parses a KiCad board file
func (p *Parser) ParseFile(filename string) (*Board, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.Parse(file)
}

// Parse reads and parses a KiCad board from an io.Reader
func (p *Parser) Parse(r io.Reader) (*Board, error) {
	sexps, err := kicadsexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse s-expression: %w", err)
	}
	if len(sexps) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrNotBoard)
	}

	root, ok := sexps[0].(*kicadsexp.List)
	if !ok || root.Key() != "kicad_pcb" {
		return nil, fmt.Errorf("%w: expected 'kicad_pcb', got %q", ErrNotBoard, sexps[0].String())
	}

	version, generator, err := parseHeader(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}

	board := &Board{
		Version:   version,
		Generator: generator,
	}

	if general := root.Find("general"); general != nil {
		if th := general.Find("thickness"); th != nil {
			board.General.Thickness, _ = th.FloatAt(1)
		}
	}

	if layersNode := root.Find("layers"); layersNode != nil {
		layers, err := parseLayers(layersNode)
		if err != nil {
			return nil, fmt.Errorf("failed to parse layers section: %w", err)
		}
		board.Layers = layers
	}

	board.Nets, err = parseNets(root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse nets: %w", err)
	}
	netMap := NewNetMap(board.Nets)

	if board.Graphics, err = p.parseGraphics(root, "gr_", nil, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse graphics: %w", err)
	}
	if board.Tracks, err = parseTracks(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse tracks: %w", err)
	}
	if board.Arcs, err = parseArcs(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse arcs: %w", err)
	}
	if board.Vias, err = parseVias(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse vias: %w", err)
	}
	if board.Footprints, err = p.parseFootprints(root, netMap); err != nil {
		return nil, fmt.Errorf("failed to parse footprints: %w", err)
	}
	board.Zones = p.parseZones(root, netMap)

	p.logger.Debug("parsed board",
		"version", board.Version,
		"footprints", len(board.Footprints),
		"tracks", len(board.Tracks),
		"arcs", len(board.Arcs),
		"vias", len(board.Vias),
		"zones", len(board.Zones))

	return board, nil
}

// parseHeader extracts version and generator information from the root node
// Expected format: (kicad_pcb (version 20221018) (generator pcbnew) ...)
func parseHeader(root *kicadsexp.List) (version int, generator string, err error) {
	versionNode := root.Find("version")
	if versionNode == nil {
		return 0, "", fmt.Errorf("missing required 'version' field")
	}

	ver, ok := versionNode.IntAt(1)
	if !ok {
		return 0, "", fmt.Errorf("line %d: invalid version", versionNode.Line())
	}
	if ver < MinSupportedVersion {
		return 0, "", fmt.Errorf("%w: %d (minimum required: %d / KiCad 6.0)", ErrUnsupportedVersion, ver, MinSupportedVersion)
	}

	gen := "unknown"
	if host, ok := root.Value("host"); ok {
		gen = host
	} else if g, ok := root.Value("generator"); ok {
		gen = g
	}

	return ver, gen, nil
}

// parseLayers extracts layer definitions
// Expected format: (layers (0 "F.Cu" signal) (31 "B.Cu" signal) ...)
func parseLayers(node *kicadsexp.List) ([]Layer, error) {
	var layers []Layer

	for _, layerNode := range node.Lists() {
		number, ok := layerNode.IntAt(0)
		if !ok {
			return nil, fmt.Errorf("line %d: invalid layer number", layerNode.Line())
		}
		name, ok := layerNode.StringAt(1)
		if !ok {
			return nil, fmt.Errorf("line %d: missing layer name", layerNode.Line())
		}
		layerType, ok := layerNode.StringAt(2)
		if !ok {
			layerType = "user"
		}

		layers = append(layers, Layer{Number: number, Name: name, Type: layerType})
	}

	if len(layers) == 0 {
		return nil, fmt.Errorf("no layers defined")
	}
	return layers, nil
}

// parseNets extracts net definitions from the root node
// Expected format: (net 0 "") (net 1 "GND") (net 2 "+5V") ...
func parseNets(root *kicadsexp.List) ([]Net, error) {
	nets := []Net{}

	for _, netNode := range root.FindAll("net") {
		number, ok := netNode.IntAt(1)
		if !ok {
			return nil, fmt.Errorf("line %d: invalid net number", netNode.Line())
		}
		name, _ := netNode.StringAt(2)
		nets = append(nets, Net{Number: number, Name: name})
	}

	return nets, nil
}
