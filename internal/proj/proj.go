// Package proj converts point coordinates between WGS84 geographic
// coordinates and the projected coordinate reference systems used by the
// shipped national WFS services. All of those services sit on transverse
// mercator projections over the GRS80 ellipsoid, so a single parameterized
// projection covers every supported SRID.
package proj

import (
	"math"

	"github.com/rotisserie/eris"
)

// GRS80 ellipsoid.
const (
	semiMajor  = 6378137.0
	flattening = 1.0 / 298.257222101
)

// tm holds transverse mercator parameters for one projected CRS.
type tm struct {
	lon0         float64 // central meridian, degrees
	scale        float64
	falseEasting float64
	falseNorthing float64
}

// crss maps EPSG codes to projection parameters. SRID 4326 is handled
// separately as the identity case.
var crss = map[int]tm{
	3067:  {lon0: 27, scale: 0.9996, falseEasting: 500000}, // ETRS89 / TM35FIN (Finland)
	25832: {lon0: 9, scale: 0.9996, falseEasting: 500000},  // ETRS89 / UTM zone 32N (Denmark)
	25833: {lon0: 15, scale: 0.9996, falseEasting: 500000}, // ETRS89 / UTM zone 33N
	25835: {lon0: 27, scale: 0.9996, falseEasting: 500000}, // ETRS89 / UTM zone 35N
}

// Supported reports whether coordinates can be transformed to and from the
// given SRID.
func Supported(srid int) bool {
	if srid == 4326 {
		return true
	}
	_, ok := crss[srid]
	return ok
}

// ToPlanar projects a WGS84 latitude/longitude into the CRS identified by
// srid, returning easting and northing in meters. For srid 4326 the
// coordinates pass through as x=lon, y=lat.
func ToPlanar(srid int, lat, lon float64) (x, y float64, err error) {
	if srid == 4326 {
		return lon, lat, nil
	}
	p, ok := crss[srid]
	if !ok {
		return 0, 0, eris.Errorf("proj: unsupported SRID %d", srid)
	}
	x, y = p.forward(lat, lon)
	return x, y, nil
}

// ToGeographic converts planar coordinates in the CRS identified by srid back
// to WGS84 latitude/longitude.
func ToGeographic(srid int, x, y float64) (lat, lon float64, err error) {
	if srid == 4326 {
		return y, x, nil
	}
	p, ok := crss[srid]
	if !ok {
		return 0, 0, eris.Errorf("proj: unsupported SRID %d", srid)
	}
	lat, lon = p.inverse(x, y)
	return lat, lon, nil
}

// forward implements the Redfearn series expansion for the transverse
// mercator projection (lat/lon in degrees to easting/northing in meters).
func (p tm) forward(lat, lon float64) (easting, northing float64) {
	phi := lat * math.Pi / 180
	dLam := (lon - p.lon0) * math.Pi / 180

	e2 := flattening * (2 - flattening)
	ep2 := e2 / (1 - e2)

	sinPhi, cosPhi := math.Sin(phi), math.Cos(phi)
	nu := semiMajor / math.Sqrt(1-e2*sinPhi*sinPhi)
	t := math.Tan(phi) * math.Tan(phi)
	c := ep2 * cosPhi * cosPhi
	a := dLam * cosPhi

	m := meridianArc(phi, e2)

	easting = p.falseEasting + p.scale*nu*(a+
		(1-t+c)*math.Pow(a, 3)/6+
		(5-18*t+t*t+72*c-58*ep2)*math.Pow(a, 5)/120)
	northing = p.falseNorthing + p.scale*(m+nu*math.Tan(phi)*(a*a/2+
		(5-t+9*c+4*c*c)*math.Pow(a, 4)/24+
		(61-58*t+t*t+600*c-330*ep2)*math.Pow(a, 6)/720))
	return easting, northing
}

// inverse implements the footpoint-latitude series for the reverse transform.
func (p tm) inverse(easting, northing float64) (lat, lon float64) {
	e2 := flattening * (2 - flattening)
	ep2 := e2 / (1 - e2)

	m := (northing - p.falseNorthing) / p.scale
	mu := m / (semiMajor * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	e1 := (1 - math.Sqrt(1-e2)) / (1 + math.Sqrt(1-e2))
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi1, cosPhi1 := math.Sin(phi1), math.Cos(phi1)
	c1 := ep2 * cosPhi1 * cosPhi1
	t1 := math.Tan(phi1) * math.Tan(phi1)
	nu1 := semiMajor / math.Sqrt(1-e2*sinPhi1*sinPhi1)
	rho1 := semiMajor * (1 - e2) / math.Pow(1-e2*sinPhi1*sinPhi1, 1.5)
	d := (easting - p.falseEasting) / (nu1 * p.scale)

	phi := phi1 - (nu1 * math.Tan(phi1) / rho1) * (d*d/2 -
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24 +
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)
	lam := p.lon0*math.Pi/180 + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi1

	return phi * 180 / math.Pi, lam * 180 / math.Pi
}

// meridianArc returns the distance along the meridian from the equator to
// latitude phi (radians).
func meridianArc(phi, e2 float64) float64 {
	e4 := e2 * e2
	e6 := e4 * e2
	return semiMajor * ((1-e2/4-3*e4/64-5*e6/256)*phi -
		(3*e2/8+3*e4/32+45*e6/1024)*math.Sin(2*phi) +
		(15*e4/256+45*e6/1024)*math.Sin(4*phi) -
		(35*e6/3072)*math.Sin(6*phi))
}
