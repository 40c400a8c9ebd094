package wfs

import (
	"encoding/xml"

	"github.com/rotisserie/eris"
)

// capabilitiesDoc is the slice of a WFS GetCapabilities response we care
// about: the feature type list. Namespace prefixes vary between servers, so
// matching is done on local names only.
type capabilitiesDoc struct {
	XMLName      xml.Name `xml:"WFS_Capabilities"`
	FeatureTypes []struct {
		Name string `xml:"Name"`
	} `xml:"FeatureTypeList>FeatureType"`
}

// parseCapabilities extracts the advertised layer names from a
// GetCapabilities XML document.
func parseCapabilities(body []byte) ([]string, error) {
	var doc capabilitiesDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, eris.Wrap(err, "wfs: parse capabilities")
	}
	layers := make([]string, 0, len(doc.FeatureTypes))
	for _, ft := range doc.FeatureTypes {
		if ft.Name != "" {
			layers = append(layers, ft.Name)
		}
	}
	return layers, nil
}
