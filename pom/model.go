package pom

import "encoding/xml"

// Project is the slice of a Maven POM that coordinate resolution
// reads: identity, parent linkage, properties, and relocation.
type Project struct {
	XMLName                xml.Name                `xml:"project"`
	ModelVersion           string                  `xml:"modelVersion"`
	GroupID                string                  `xml:"groupId"`
	ArtifactID             string                  `xml:"artifactId"`
	Version                string                  `xml:"version"`
	Packaging              string                  `xml:"packaging"`
	Parent                 *Parent                 `xml:"parent"`
	Properties             *Properties             `xml:"properties"`
	DistributionManagement *DistributionManagement `xml:"distributionManagement"`
}

// Relocation returns the coordinates the artifact moved to, or nil.
func (p *Project) Relocation() *Relocation {
	if p.DistributionManagement == nil {
		return nil
	}
	return p.DistributionManagement.Relocation
}

type Parent struct {
	GroupID      string `xml:"groupId"`
	ArtifactID   string `xml:"artifactId"`
	Version      string `xml:"version"`
	RelativePath string `xml:"relativePath"`
}

// Properties holds the free-form property elements of a POM.
type Properties struct {
	Entries map[string]string
}

func (p *Properties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	p.Entries = make(map[string]string)
	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.StartElement:
			var value string
			if err := d.DecodeElement(&value, &t); err != nil {
				return err
			}
			p.Entries[t.Name.Local] = value
		case xml.EndElement:
			if t.Name == start.Name {
				return nil
			}
		}
	}
}

type DistributionManagement struct {
	Relocation *Relocation `xml:"relocation"`
}

type Relocation struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
	Message    string `xml:"message"`
}
