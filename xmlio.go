package dynamica

import (
	"bytes"
	"compress/bzip2"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"os"
)

// xmlConfig is the on-disk configuration format of spec.md §6: a
// particle list either spelled out as inline <Pt> elements or packed
// into a single base64+bzip2 "AppendedBinary" blob, plus the BC block
// (Type, Dimensions, Lambda, ShearRate) and Genus/Species entries.
// LoadXML uses the BC Type, Dimensions and ShearRate; Lambda and the
// species are parsed but not applied. Grounded in DynamO's base/configuration XML
// schema; encoding/xml is stdlib because no third-party XML library
// appears anywhere in the retrieved pack (see DESIGN.md).
type xmlConfig struct {
	XMLName  xml.Name      `xml:"DynamOconfig"`
	Sim      xmlSimulation `xml:"Simulation"`
}

type xmlSimulation struct {
	BC         xmlBC          `xml:"BC"`
	Genus      []xmlGenus     `xml:"Genus>Species"`
	ParticleBlock xmlParticles `xml:"ParticleData"`
}

type xmlBC struct {
	Type       string  `xml:"Type,attr"`
	Dimensions xmlVec  `xml:"Dimensions"`
	// Lambda is deliberately spelled with a capital L here, matching
	// the original implementation's attribute name exactly (its own
	// reader tested whether "lambda" was set but then read "Lambda", a
	// latent bug this package does not reproduce — it always reads and
	// writes "Lambda").
	Lambda     float64 `xml:"Lambda,attr"`
	ShearRate  float64 `xml:"ShearRate,attr"`
}

type xmlGenus struct {
	Name     string  `xml:"Name,attr"`
	Mass     float64 `xml:"Mass,attr"`
	Diameter float64 `xml:"Diameter,attr"`
}

type xmlVec struct {
	X, Y, Z float64 `xml:",attr"`
}

func (v xmlVec) toVec3() Vec3 { return Vec3{v.X, v.Y, v.Z} }
func vecToXML(v Vec3) xmlVec  { return xmlVec{v[0], v[1], v[2]} }

type xmlParticles struct {
	Pts      []xmlPt `xml:"Pt"`
	Appended string  `xml:"AppendedBinary"`
}

type xmlPt struct {
	ID int     `xml:"ID,attr"`
	P  xmlVec  `xml:"P"`
	V  xmlVec  `xml:"V"`
}

// LoadXML parses a configuration file into a ready-to-schedule Context.
// Installs NoneBC/PeriodicBC/LeesEdwardsBC per the BC Type attribute and
// a plain NewtonianLiouvillean; callers wanting gravity or SLLOD swap
// ctx.Dynamics in afterward.
func LoadXML(path string) (*Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Msg: err.Error()}
	}
	defer f.Close()

	var cfg xmlConfig
	if err := xml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, &ConfigError{Msg: fmt.Sprintf("malformed XML: %v", err)}
	}

	ctx := NewContext()
	ctx.Dimensions = cfg.Sim.BC.Dimensions.toVec3()

	switch cfg.Sim.BC.Type {
	case "", "None":
		ctx.BC = NoneBC{}
	case "Periodic":
		ctx.BC = NewPeriodicBC(ctx.Dimensions)
	case "LeesEdwards":
		ctx.BC = NewLeesEdwardsBC(ctx.Dimensions, cfg.Sim.BC.ShearRate)
	default:
		return nil, &ConfigError{Attr: "Type", Msg: "unknown boundary condition " + cfg.Sim.BC.Type}
	}
	ctx.Dynamics = &NewtonianLiouvillean{}

	particles, err := decodeParticles(cfg.Sim.ParticleBlock)
	if err != nil {
		return nil, err
	}
	ctx.Particles = particles
	ctx.Logger.Infof("loaded %d particles from %s", len(ctx.Particles), path)
	return ctx, nil
}

// decodeParticles prefers the inline <Pt> list when present and falls
// back to the packed AppendedBinary blob, matching spec.md §6's "either
// representation may be present; inline takes precedence when both
// are" rule.
func decodeParticles(block xmlParticles) ([]*Particle, error) {
	if len(block.Pts) > 0 {
		out := make([]*Particle, len(block.Pts))
		for i, pt := range block.Pts {
			out[i] = NewParticle(pt.ID, pt.P.toVec3(), pt.V.toVec3())
		}
		return out, nil
	}
	if block.Appended == "" {
		return nil, nil
	}
	return decodeAppendedBinary(block.Appended)
}

// binaryRecordSize is sizeof(uint64 id, float64 vx,vy,vz,x,y,z) in the
// little-endian packed layout spec.md §6 specifies for AppendedBinary.
const binaryRecordSize = 8 + 8*6

func decodeAppendedBinary(encoded string) ([]*Particle, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &ConfigError{Attr: "AppendedBinary", Msg: "invalid base64: " + err.Error()}
	}
	r := bzip2.NewReader(bytes.NewReader(raw))
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ConfigError{Attr: "AppendedBinary", Msg: "invalid bzip2 stream: " + err.Error()}
	}
	if len(data)%binaryRecordSize != 0 {
		return nil, &ConfigError{Attr: "AppendedBinary", Msg: "truncated particle record"}
	}

	n := len(data) / binaryRecordSize
	out := make([]*Particle, n)
	for i := 0; i < n; i++ {
		rec := data[i*binaryRecordSize : (i+1)*binaryRecordSize]
		id := binary.LittleEndian.Uint64(rec[0:8])
		vx := math.Float64frombits(binary.LittleEndian.Uint64(rec[8:16]))
		vy := math.Float64frombits(binary.LittleEndian.Uint64(rec[16:24]))
		vz := math.Float64frombits(binary.LittleEndian.Uint64(rec[24:32]))
		x := math.Float64frombits(binary.LittleEndian.Uint64(rec[32:40]))
		y := math.Float64frombits(binary.LittleEndian.Uint64(rec[40:48]))
		z := math.Float64frombits(binary.LittleEndian.Uint64(rec[48:56]))
		out[i] = NewParticle(int(id), Vec3{x, y, z}, Vec3{vx, vy, vz})
	}
	return out, nil
}

// WriteXML snapshots ctx to path as inline <Pt> elements, matching
// spec.md §6's writeXML(path, applyBC, round) contract: applyBC folds
// each particle's position and velocity through ctx.BC's full wrap
// (picking up a Lees-Edwards shear kick, say) before writing, and round
// additionally folds the (possibly already-applied) position into the
// primary image for a canonical on-disk representation. Both act on a
// scoped copy of each particle's state — the particle is wrapped and
// written, never mutated (spec.md §4: "resource acquisition ... scoped
// acquisition of a particle snapshot is used during binary writes").
// The AppendedBinary path is read-only in this package (Go's standard
// library ships a bzip2 reader but no compressor — see DESIGN.md), so
// writes always use the inline representation.
func (ctx *Context) WriteXML(path string, applyBC bool, round bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cfg := xmlConfig{
		Sim: xmlSimulation{
			BC: xmlBC{
				Dimensions: vecToXML(ctx.Dimensions),
			},
			ParticleBlock: xmlParticles{},
		},
	}

	switch bc := ctx.BC.(type) {
	case NoneBC:
		cfg.Sim.BC.Type = "None"
	case *PeriodicBC:
		cfg.Sim.BC.Type = "Periodic"
	case *LeesEdwardsBC:
		cfg.Sim.BC.Type = "LeesEdwards"
		cfg.Sim.BC.ShearRate = bc.ShearRate
	}

	pts := make([]xmlPt, len(ctx.Particles))
	for i, p := range ctx.Particles {
		pos, vel := p.Pos, p.Vel
		if applyBC {
			ctx.BC.ApplyBCVel(&pos, &vel)
		}
		if round {
			pos = ctx.BC.Rounding(pos)
		}
		pts[i] = xmlPt{ID: p.ID, P: vecToXML(pos), V: vecToXML(vel)}
	}
	cfg.Sim.ParticleBlock.Pts = pts

	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		return err
	}
	ctx.Logger.Infof("wrote %d particles to %s", len(ctx.Particles), path)
	return nil
}
