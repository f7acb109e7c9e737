package xar

import "encoding/xml"

// This file holds the XML shapes of the table of contents. Reading uses the
// xml* types; writing uses the out* types, which carry raw inner XML for
// properties this package does not model.

type xmlDoc struct {
	XMLName xml.Name `xml:"xar"`
	TOC     xmlTOC   `xml:"toc"`
}

type xmlTOC struct {
	Checksum *xmlHeapRef `xml:"checksum"`
	Files    []*xmlFile  `xml:"file"`
}

type xmlHeapRef struct {
	Style  string `xml:"style,attr"`
	Offset int64  `xml:"offset"`
	Size   int64  `xml:"size"`
}

type xmlFile struct {
	ID    string     `xml:"id,attr"`
	Name  string     `xml:"name"`
	Type  string     `xml:"type"`
	Data  *xmlData   `xml:"data"`
	Files []*xmlFile `xml:"file"`
}

type xmlData struct {
	Length            int64       `xml:"length"`
	Offset            int64       `xml:"offset"`
	Size              int64       `xml:"size"`
	Encoding          xmlEncoding `xml:"encoding"`
	ArchivedChecksum  xmlChecksum `xml:"archived-checksum"`
	ExtractedChecksum xmlChecksum `xml:"extracted-checksum"`
}

type xmlEncoding struct {
	Style string `xml:"style,attr"`
}

type xmlChecksum struct {
	Style  string `xml:"style,attr"`
	Digest string `xml:",chardata"`
}

type outDoc struct {
	XMLName xml.Name `xml:"xar"`
	Subdocs string   `xml:",innerxml"`
	TOC     outTOC   `xml:"toc"`
}

type outTOC struct {
	Checksum *xmlHeapRef `xml:"checksum,omitempty"`
	Files    []*outFile  `xml:"file"`
}

type outFile struct {
	ID         string     `xml:"id,attr"`
	Name       string     `xml:"name"`
	Type       string     `xml:"type"`
	Data       *xmlData   `xml:"data,omitempty"`
	Properties string     `xml:",innerxml"`
	Files      []*outFile `xml:"file"`
}
