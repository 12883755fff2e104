// Package snmpclient wraps gosnmp for the scanner, the supplies walker, and
// the side-channel SNMP proxy. gosnmp supplies the BER wire codec that
// spec.md §1 explicitly treats as an external collaborator.
package snmpclient

// OID constants, grounded on the teacher's common/snmp/oids package and
// extended with the Printer-MIB and Port-Monitor OIDs spec.md §4 names.
const (
	SysDescr    = "1.3.6.1.2.1.1.1.0"
	SysObjectID = "1.3.6.1.2.1.1.2.0"
	SysLocation = "1.3.6.1.2.1.1.6.0"

	HrDeviceDescr               = "1.3.6.1.2.1.25.3.2.1.3.1"
	HrDeviceType                = "1.3.6.1.2.1.25.3.2.1.2.1"
	HrPrinterStatus             = "1.3.6.1.2.1.25.3.5.1.1.1"
	HrPrinterDetectedErrorState = "1.3.6.1.2.1.25.3.5.1.2.1"

	PrtGeneralSerialNumber         = "1.3.6.1.2.1.43.5.1.1.17.1"
	PrtMarkerLifeCount             = "1.3.6.1.2.1.43.10.2.1.4.1.1"
	PrtGeneralCurrentLocalization  = "1.3.6.1.2.1.43.7.1.1.4.1.1"
	PrtLocalizationCharacterSetPfx = "1.3.6.1.2.1.43.7.1.1.5.1" // + "." + localization index

	PrtMarkerSuppliesEntry   = "1.3.6.1.2.1.43.11.1.1"
	PrtMarkerSuppliesClass   = "1.3.6.1.2.1.43.11.1.1.4"
	PrtMarkerSuppliesType    = "1.3.6.1.2.1.43.11.1.1.5"
	PrtMarkerSuppliesDesc    = "1.3.6.1.2.1.43.11.1.1.6"
	PrtMarkerSuppliesColorID = "1.3.6.1.2.1.43.11.1.1.3"
	PrtMarkerSuppliesMaxCap  = "1.3.6.1.2.1.43.11.1.1.8"
	PrtMarkerSuppliesLevel   = "1.3.6.1.2.1.43.11.1.1.9"
	PrtMarkerSuppliesUnit    = "1.3.6.1.2.1.43.11.1.1.7"
	PrtMarkerColorantValue   = "1.3.6.1.2.1.43.12.1.1.4"

	PpmPrinterIEEE1284DeviceID = "1.3.6.1.4.1.2699.1.2.1.2.1.3.1.1"
	PpmPortServiceNameOrURI    = "1.3.6.1.4.1.2699.1.2.1.1.1.3.1.1"

	// Vendor-private follow-up OIDs referenced by spec.md §4.2, grounded on
	// backend/snmp.c's LexmarkProductOID/XeroxProductOID tables.
	LexmarkPrivateEnterprise = "1.3.6.1.4.1.641"
	XeroxPrivateEnterprise   = "1.3.6.1.4.1.128"
	LexmarkProductOID        = LexmarkPrivateEnterprise + ".2.1.2.1.2.1"
	XeroxProductOID          = XeroxPrivateEnterprise + ".2.1.3.1.2.0"
)

// RequestID symbols used both as the SNMPv1 request-id and as a routing tag
// for the scanner's asynchronous reply correlation, per spec.md §6.
const (
	DeviceType        = 1
	DeviceDescription = 2
	DeviceLocation    = 3
	DeviceID          = 4
	DeviceURI         = 5
	DeviceProduct     = 6
)

// ValidRequestID reports whether id is one of the scanner's own symbolic
// request IDs. Replies with any other request-id are dropped per spec.md §8
// invariant 7.
func ValidRequestID(id int) bool {
	switch id {
	case DeviceType, DeviceDescription, DeviceLocation, DeviceID, DeviceURI, DeviceProduct:
		return true
	default:
		return false
	}
}
