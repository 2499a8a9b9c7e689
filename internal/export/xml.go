// =============================================================================
// Vehicle Listing Importer - XML Writer
// =============================================================================
//
// XML STRUCTURE:
//
//   <listings importId="..." source="stock.csv" listings="2" vehicles="3">
//     <listing n="1" id="audi_a6_2020_black" count="2">
//       <make>Audi</make>                <!-- grouping fields -->
//       <model>A6</model>
//       <variant>quattro</variant>       <!-- listing fields -->
//       <vehicle n="1">                  <!-- vehicle fields -->
//         <vin>WAUZZZ4G0BN000001</vin>
//       </vehicle>
//       <vehicle n="2">...</vehicle>
//     </listing>
//     <listing n="2" ...>
//       <vehicle n="3">...</vehicle>     <!-- global numbering continues -->
//     </listing>
//   </listings>
//
// Element names are the schema field keys. Empty fields are left out unless
// IncludeEmptyFields is set, in which case they are self-closing.
//
// =============================================================================

package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/ginjaninja78/vehicle-listing-importer/internal/listing"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/schema"
	"github.com/ginjaninja78/vehicle-listing-importer/internal/vehicle"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// XMLOptions contains options for XML generation.
type XMLOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// RootElement, ListingElement and VehicleElement name the container
	// elements.
	// Default: "listings", "listing", "vehicle"
	RootElement    string
	ListingElement string
	VehicleElement string

	// IndexAttribute is the attribute carrying the 1-based position.
	// Default: "n"
	IndexAttribute string

	// VehicleNumberingGlobal numbers vehicles across the whole document
	// instead of restarting at 1 in each listing.
	// Default: true
	VehicleNumberingGlobal bool

	// IncludeEmptyFields writes empty fields as self-closing elements.
	// Default: false
	IncludeEmptyFields bool
}

// DefaultXMLOptions returns the default generation options.
func DefaultXMLOptions() XMLOptions {
	return XMLOptions{
		Indent:                 "  ",
		IncludeXMLDeclaration:  true,
		RootElement:            "listings",
		ListingElement:         "listing",
		VehicleElement:         "vehicle",
		IndexAttribute:         "n",
		VehicleNumberingGlobal: true,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// GenerateXML renders doc as an XML document.
func GenerateXML(doc *Document, registry *schema.Registry, options XMLOptions) ([]byte, error) {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(xml.Header)
	}

	root := buildDocument(doc, registry, options)
	writeElement(&buffer, root, options.Indent, 0)

	return buffer.Bytes(), nil
}

// buildDocument constructs the element tree.
func buildDocument(doc *Document, registry *schema.Registry, options XMLOptions) XMLElement {
	root := XMLElement{
		XMLName: xml.Name{Local: options.RootElement},
		Attributes: []xml.Attr{
			attr("importId", doc.ImportID),
			attr("source", doc.Source),
			attr("listings", strconv.Itoa(doc.Stats.TotalListings)),
			attr("vehicles", strconv.Itoa(doc.Stats.TotalVehicles)),
		},
	}

	groupingKeys, listingKeys, vehicleKeys := orderedKeys(registry)
	vehicleIndex := 1

	for i := range doc.Listings {
		l := &doc.Listings[i]
		if !options.VehicleNumberingGlobal {
			vehicleIndex = 1
		}
		root.Children = append(root.Children,
			buildListingElement(l, i+1, groupingKeys, listingKeys, vehicleKeys, options, &vehicleIndex))
	}

	return root
}

// buildListingElement constructs one listing element. vehicleIndex is
// advanced for every vehicle written.
func buildListingElement(l *listing.Listing, n int, groupingKeys, listingKeys, vehicleKeys []schema.FieldKey, options XMLOptions, vehicleIndex *int) XMLElement {
	element := XMLElement{
		XMLName: xml.Name{Local: options.ListingElement},
		Attributes: []xml.Attr{
			attr(options.IndexAttribute, strconv.Itoa(n)),
			attr("id", l.ID),
			attr("count", strconv.Itoa(l.Count)),
		},
	}

	for _, key := range groupingKeys {
		element.Children = appendField(element.Children, key, l.Grouping.Get(key), options)
	}
	for _, key := range listingKeys {
		element.Children = appendField(element.Children, key, l.Fields.Get(key), options)
	}

	for _, detail := range l.Vehicles {
		v := XMLElement{
			XMLName:    xml.Name{Local: options.VehicleElement},
			Attributes: []xml.Attr{attr(options.IndexAttribute, strconv.Itoa(*vehicleIndex))},
		}
		for _, key := range vehicleKeys {
			v.Children = appendField(v.Children, key, detail.Get(key), options)
		}
		element.Children = append(element.Children, v)
		*vehicleIndex++
	}

	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func attr(name, value string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: name}, Value: value}
}

func appendField(children []XMLElement, key schema.FieldKey, value vehicle.Value, options XMLOptions) []XMLElement {
	if value.IsEmpty() && !options.IncludeEmptyFields {
		return children
	}
	return append(children, XMLElement{
		XMLName: xml.Name{Local: string(key)},
		Value:   value.String(),
	})
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	for _, a := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", a.Name.Local, escapeXML(a.Value)))
	}

	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if element.Value != "" {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	// EscapeText only fails on writer errors, which bytes.Buffer never returns.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
