package supplies

// Printer-MIB prtMarkerSuppliesType enumeration values this walker
// recognizes (RFC 3805), narrowed to the categories spec.md §4.5 names.
const (
	TypeOther            = 1
	TypeToner            = 3
	TypeWasteToner       = 4
	TypeInk              = 5
	TypeInkCartridge     = 6
	TypeInkRibbon        = 7
	TypeWasteInk         = 8
	TypeOpc              = 9
	TypeDeveloper        = 10
	TypeSolidWax         = 12
	TypeRibbonWax        = 13
	TypeWasteWax         = 14
	TypeFuser            = 15
	TypeCoronaWire       = 16
	TypeCleanerUnit      = 18
	TypeFuserCleaningPad = 19
	TypeTransferUnit      = 20
	TypeTonerCartridge   = 21
	TypeWastePaper       = 26
)

// prtMarkerSuppliesClass values (RFC 3805).
const (
	ClassSupplyThatIsConsumed = 3
	ClassReceptacleThatIsFilled = 4
)

// category buckets a supply type into the groups spec.md §4.5 step 3 keys
// its low/empty keywords off. "waste" types are never reported, per spec.
type category int

const (
	catOther category = iota
	catToner
	catInkOrWax
	catDeveloper
	catOpcFuserTransferCorona
	catCleaner
	catWaste
)

func categorize(supplyType int) category {
	switch supplyType {
	case TypeToner, TypeTonerCartridge:
		return catToner
	case TypeWasteToner, TypeWasteInk, TypeWasteWax, TypeWastePaper:
		return catWaste
	case TypeInk, TypeInkCartridge, TypeInkRibbon, TypeSolidWax, TypeRibbonWax:
		return catInkOrWax
	case TypeDeveloper:
		return catDeveloper
	case TypeOpc, TypeFuser, TypeTransferUnit, TypeCoronaWire:
		return catOpcFuserTransferCorona
	case TypeCleanerUnit, TypeFuserCleaningPad:
		return catCleaner
	default:
		return catOther
	}
}

// lowEmptyKeywords returns the (low, empty) printer-state-reasons keyword
// pair for a supply category, or ("","") when the category is never
// reported (waste and "other").
func lowEmptyKeywords(c category) (low, empty string) {
	switch c {
	case catToner:
		return "toner-low-report", "toner-empty-warning"
	case catInkOrWax:
		return "marker-supply-low-report", "marker-supply-empty-warning"
	case catDeveloper:
		return "developer-low-report", "developer-empty-warning"
	case catOpcFuserTransferCorona:
		return "opc-near-eol-report", "opc-life-over-warning"
	case catCleaner:
		return "cleaner-life-almost-over-report", "cleaner-life-over-warning"
	default:
		return "", ""
	}
}
