package metadata

import "encoding/xml"

type xmlDoc struct {
	XMLName xml.Name    `xml:"xar"`
	Subdocs []xmlSubdoc `xml:"subdoc"`
	TOC     xmlTOC      `xml:"toc"`
}

type xmlTOC struct {
	Files []*xmlFile `xml:"file"`
}

type xmlSubdoc struct {
	Name         string    `xml:"subdoc_name,attr"`
	Version      string    `xml:"version"`
	Architecture string    `xml:"architecture"`
	Platform     string    `xml:"platform"`
	SDKVersion   string    `xml:"sdkversion"`
	HideSymbols  string    `xml:"hide-symbols"`
	LinkOptions  []string  `xml:"link-options>option"`
	Dylibs       xmlDylibs `xml:"dylibs"`
}

type xmlDylibs struct {
	Entries []xmlDylib `xml:",any"`
}

type xmlDylib struct {
	XMLName xml.Name
	Path    string `xml:",chardata"`
}

type xmlFile struct {
	Name     string     `xml:"name"`
	Type     string     `xml:"type"`
	FileType string     `xml:"file-type"`
	Clang    []string   `xml:"clang>cmd"`
	Swift    []string   `xml:"swift>cmd"`
	Files    []*xmlFile `xml:"file"`
}
