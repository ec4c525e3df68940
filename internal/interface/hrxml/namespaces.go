// Package hrxml reads assignment records out of HR-XML documents and writes the
// outbound update and staffing action packets.
package hrxml

import (
	"github.com/beevik/etree"

	"pilott-date-editor/internal/domain/entity"
)

// Known namespace URIs
const (
	NamespaceHR       = "http://www.hr-xml.org/3"
	NamespaceHRLegacy = "http://ns.hr-xml.org/2007-04-15"
	NamespaceOA       = "http://www.openapplications.org/oagis/9"
	NamespaceXSI      = "http://www.w3.org/2001/XMLSchema-instance"
)

// Scheme describes one supported input schema version
type Scheme struct {
	Version string
	URI     string

	// Identifiers are wrapped as <AssignmentId><IdValue>..</IdValue></AssignmentId>
	NestedIdentifiers bool
}

// Schemes lists the supported input schemas in lookup priority order
var Schemes = []Scheme{
	{Version: entity.SchemeV3, URI: NamespaceHR},
	{Version: entity.SchemeV2, URI: NamespaceHRLegacy, NestedIdentifiers: true},
}

// SchemeByVersion returns the scheme registered for version
func SchemeByVersion(version string) (Scheme, bool) {
	for _, s := range Schemes {
		if s.Version == version {
			return s, true
		}
	}
	return Scheme{}, false
}

type namespaceDecl struct {
	prefix string
	uri    string
}

// Declared once on the root of every outbound packet
var outboundNamespaces = []namespaceDecl{
	{prefix: "hr", uri: NamespaceHR},
	{prefix: "oa", uri: NamespaceOA},
	{prefix: "xsi", uri: NamespaceXSI},
}

// Element local names
const (
	tagRequest            = "HRXMLRequest"
	tagHeader             = "Header"
	tagTransactID         = "TransactId"
	tagTimeStamp          = "TimeStamp"
	tagBody               = "Body"
	tagAssignment         = "Assignment"
	tagAssignmentID       = "AssignmentId"
	tagStaffingSupplierID = "StaffingSupplierId"
	tagIDValue            = "IdValue"
	tagDateRange          = "AssignmentDateRange"
	tagStartDate          = "StartDate"
	tagExpectedEndDate    = "ExpectedEndDate"
	tagActualEndDate      = "ActualEndDate"
	tagFlexMinDate        = "FlexibilityMinDate"
	tagFlexMaxDate        = "FlexibilityMaxDate"
	tagStaffingAction     = "StaffingAction"
	tagActionReasonCode   = "ActionReasonCode"
	tagActionTypeComments = "ActionTypeComments"
)

// matches reports whether e has the given local name in namespace uri
func matches(e *etree.Element, uri, local string) bool {
	return e.Tag == local && e.NamespaceURI() == uri
}

// findAll returns every element below and including e with the given name, in document order
func findAll(e *etree.Element, uri, local string) []*etree.Element {
	var found []*etree.Element
	var walk func(*etree.Element)
	walk = func(el *etree.Element) {
		if matches(el, uri, local) {
			found = append(found, el)
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	walk(e)
	return found
}

// findFirst returns the first descendant of e with the given name
func findFirst(e *etree.Element, uri, local string) *etree.Element {
	for _, c := range e.ChildElements() {
		if matches(c, uri, local) {
			return c
		}
		if found := findFirst(c, uri, local); found != nil {
			return found
		}
	}
	return nil
}

// findChild returns the first direct child of e with the given name
func findChild(e *etree.Element, uri, local string) *etree.Element {
	for _, c := range e.ChildElements() {
		if matches(c, uri, local) {
			return c
		}
	}
	return nil
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
