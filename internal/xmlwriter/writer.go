// =============================================================================
// Payroll to pain.001 Converter - XML Writer Module
// =============================================================================
//
// This module renders a batch of canonical transactions as an ISO 20022
// customer credit transfer initiation (pain.001.001.03).
//
// XML STRUCTURE:
//
//   <Document xmlns:xsi="..." xmlns="urn:iso:std:iso:20022:tech:xsd:pain.001.001.03">
//     <CstmrCdtTrfInitn>
//       <GrpHdr>                      <!-- message level totals -->
//         <MsgId/> <CreDtTm/> <NbOfTxs/> <CtrlSum/> <InitgPty><Nm/></InitgPty>
//       </GrpHdr>
//       <PmtInf>                      <!-- one payment batch -->
//         <PmtInfId/> <PmtMtd/> <BtchBookg/> <NbOfTxs/> <CtrlSum/>
//         <PmtTpInf/> <ReqdExctnDt/> <Dbtr/> <DbtrAcct/> <DbtrAgt/> <ChrgBr/>
//         <CdtTrfTxInf>...</CdtTrfTxInf>   <!-- one per transaction -->
//       </PmtInf>
//     </CstmrCdtTrfInitn>
//   </Document>
//
// WELL-FORMEDNESS:
//   The document is assembled as an element tree and serialized by a single
//   writer. Every text value and attribute value passes through escapeXML,
//   so names and remittance strings containing <, >, & or quotes cannot
//   break the structure.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/ginjaninja78/payroll-pain001/internal/types"
)

// =============================================================================
// MESSAGE CONSTANTS
// =============================================================================

const (
	// Namespace is the pain.001.001.03 schema namespace.
	Namespace = "urn:iso:std:iso:20022:tech:xsd:pain.001.001.03"

	// XSINamespace is the XML Schema instance namespace.
	XSINamespace = "http://www.w3.org/2001/XMLSchema-instance"

	// PaymentMethod is the credit transfer payment method code.
	PaymentMethod = "TRF"

	// InstructionPriority is the normal priority code.
	InstructionPriority = "NORM"

	// ChargeBearer is the "following service level" charge bearer code.
	ChargeBearer = "SLEV"

	// CreationTimeLayout renders CreDtTm in UTC with millisecond precision.
	CreationTimeLayout = "2006-01-02T15:04:05.000Z"
)

// Defaults for the deployment-specific originator values.
const (
	DefaultOriginatorName  = "AXV"
	DefaultMessageIDPrefix = "AXV "
	DefaultDebtorAccount   = "013780100000000018617511MAD"
	DefaultDebtorAgentBIC  = "BMCIMAMC"
	DefaultAccountCurrency = "MAD"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "    " (four spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "UTF-8"
	Encoding string

	// OriginatorName is written to InitgPty/Nm and Dbtr/Nm.
	OriginatorName string

	// MessageIDPrefix is prepended to the payment information id in MsgId.
	MessageIDPrefix string

	// DebtorAccount is the originator's account identifier.
	DebtorAccount string

	// DebtorAgentBIC is the originator bank's BIC.
	DebtorAgentBIC string

	// AccountCurrency is written to DbtrAcct/Ccy and CdtrAcct/Ccy.
	AccountCurrency string
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "    ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "UTF-8",
		OriginatorName:        DefaultOriginatorName,
		MessageIDPrefix:       DefaultMessageIDPrefix,
		DebtorAccount:         DefaultDebtorAccount,
		DebtorAgentBIC:        DefaultDebtorAgentBIC,
		AccountCurrency:       DefaultAccountCurrency,
	}
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders the batch with the default options.
func Generate(batch types.Batch) ([]byte, error) {
	return GenerateWithOptions(batch, DefaultGenerateOptions())
}

// GenerateWithOptions renders the batch as a pain.001.001.03 document.
//
// GENERATION PROCESS:
//   1. Build the group header from the batch totals
//   2. Build the payment information block with the originator constants
//   3. Append one CdtTrfTxInf per transaction, in order
//   4. Serialize the tree with indentation
func GenerateWithOptions(batch types.Batch, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer

	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	doc := buildDocument(batch, options)

	xmlBytes, err := marshalWithIndent(doc, options.Indent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}

	buffer.Write(xmlBytes)

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLDocument represents the root of the XML document.
type XMLDocument struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Children   []XMLElement
}

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName    xml.Name
	Attributes []xml.Attr
	Value      string
	Children   []XMLElement
}

// buildDocument constructs the XML document structure.
func buildDocument(batch types.Batch, options GenerateOptions) *XMLDocument {
	doc := &XMLDocument{
		XMLName: xml.Name{Local: "Document"},
		Attributes: []xml.Attr{
			{Name: xml.Name{Local: "xmlns:xsi"}, Value: XSINamespace},
			{Name: xml.Name{Local: "xmlns"}, Value: Namespace},
		},
	}

	doc.Children = append(doc.Children, element("CstmrCdtTrfInitn",
		buildGroupHeader(batch, options),
		buildPaymentInformation(batch, options),
	))

	return doc
}

// buildGroupHeader constructs the GrpHdr element.
//
// STRUCTURE:
//   <GrpHdr>
//     <MsgId>AXV PMT-001</MsgId>
//     <CreDtTm>2024-01-31T09:30:00.000Z</CreDtTm>
//     <NbOfTxs>2</NbOfTxs>
//     <CtrlSum>3000.50</CtrlSum>
//     <InitgPty><Nm>AXV</Nm></InitgPty>
//   </GrpHdr>
func buildGroupHeader(batch types.Batch, options GenerateOptions) XMLElement {
	return element("GrpHdr",
		createSimpleElement("MsgId", options.MessageIDPrefix+batch.Metadata.PaymentInfoID),
		createSimpleElement("CreDtTm", formatCreationTime(batch.CreatedAt)),
		createSimpleElement("NbOfTxs", strconv.Itoa(batch.Totals.TransactionCount)),
		createSimpleElement("CtrlSum", batch.Totals.ControlSumText()),
		element("InitgPty",
			createSimpleElement("Nm", options.OriginatorName),
		),
	)
}

// buildPaymentInformation constructs the PmtInf element with its
// transactions.
func buildPaymentInformation(batch types.Batch, options GenerateOptions) XMLElement {
	pmtInf := element("PmtInf",
		createSimpleElement("PmtInfId", batch.Metadata.PaymentInfoID),
		createSimpleElement("PmtMtd", PaymentMethod),
		createSimpleElement("BtchBookg", "true"),
		createSimpleElement("NbOfTxs", strconv.Itoa(batch.Totals.TransactionCount)),
		createSimpleElement("CtrlSum", batch.Totals.ControlSumText()),
		element("PmtTpInf",
			createSimpleElement("InstrPrty", InstructionPriority),
		),
		createSimpleElement("ReqdExctnDt", batch.Metadata.RequestedExecutionDate),
		element("Dbtr",
			createSimpleElement("Nm", options.OriginatorName),
		),
		element("DbtrAcct",
			element("Id",
				element("Othr",
					createSimpleElement("Id", options.DebtorAccount),
				),
			),
			createSimpleElement("Ccy", options.AccountCurrency),
		),
		element("DbtrAgt",
			element("FinInstnId",
				createSimpleElement("BIC", options.DebtorAgentBIC),
			),
		),
		createSimpleElement("ChrgBr", ChargeBearer),
	)

	for _, tx := range batch.Transactions {
		pmtInf.Children = append(pmtInf.Children,
			buildTransactionElement(tx, batch.Metadata.RemittanceType, options))
	}

	return pmtInf
}

// buildTransactionElement constructs a CdtTrfTxInf element.
//
// STRUCTURE:
//   <CdtTrfTxInf>
//     <PmtId><EndToEndId>PMT-001-00001</EndToEndId></PmtId>
//     <Amt><InstdAmt Ccy="MAD">1500.5</InstdAmt></Amt>
//     <CdtrAgt><FinInstnId><BIC>BMCIMAMC</BIC></FinInstnId></CdtrAgt>
//     <Cdtr><Nm>Jean Dupont</Nm></Cdtr>
//     <CdtrAcct><Id><Othr><Id>013780100000123</Id></Othr></Id><Ccy>MAD</Ccy></CdtrAcct>
//     <RmtInf><Ustrd>SALAIRE</Ustrd></RmtInf>
//   </CdtTrfTxInf>
func buildTransactionElement(tx types.Transaction, remittance string, options GenerateOptions) XMLElement {
	amount := createSimpleElement("InstdAmt", tx.Amount.String())
	amount.Attributes = []xml.Attr{
		{Name: xml.Name{Local: "Ccy"}, Value: tx.Currency},
	}

	return element("CdtTrfTxInf",
		element("PmtId",
			createSimpleElement("EndToEndId", tx.EndToEndID),
		),
		element("Amt", amount),
		element("CdtrAgt",
			element("FinInstnId",
				createSimpleElement("BIC", tx.CreditorBIC),
			),
		),
		element("Cdtr",
			createSimpleElement("Nm", tx.CreditorName),
		),
		element("CdtrAcct",
			element("Id",
				element("Othr",
					createSimpleElement("Id", tx.CreditorAccount),
				),
			),
			createSimpleElement("Ccy", options.AccountCurrency),
		),
		element("RmtInf",
			createSimpleElement("Ustrd", remittance),
		),
	)
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// element creates an XML element holding the given children.
func element(name string, children ...XMLElement) XMLElement {
	return XMLElement{
		XMLName:  xml.Name{Local: name},
		Children: children,
	}
}

// formatCreationTime renders t in UTC. A zero time is rendered as now.
func formatCreationTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(CreationTimeLayout)
}

// marshalWithIndent marshals the document with indentation.
func marshalWithIndent(doc *XMLDocument, indent string) ([]byte, error) {
	var buffer bytes.Buffer

	if doc.XMLName.Local == "" {
		return nil, fmt.Errorf("document has no root element")
	}

	// Write the root element opening tag.
	buffer.WriteString("<")
	buffer.WriteString(doc.XMLName.Local)

	// Write root attributes.
	for _, attr := range doc.Attributes {
		writeAttribute(&buffer, attr)
	}

	buffer.WriteString(">\n")

	// Write children.
	for _, child := range doc.Children {
		if err := writeElement(&buffer, child, indent, 1); err != nil {
			return nil, err
		}
	}

	// Write the root element closing tag.
	buffer.WriteString("</")
	buffer.WriteString(doc.XMLName.Local)
	buffer.WriteString(">\n")

	return buffer.Bytes(), nil
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) error {
	if element.XMLName.Local == "" {
		return fmt.Errorf("element at depth %d has no name", level)
	}

	// Write indentation.
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	// Write opening tag.
	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	// Write attributes.
	for _, attr := range element.Attributes {
		writeAttribute(buffer, attr)
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		// Simple element with text value.
		buffer.WriteString(escapeXML(element.Value))
	} else {
		// Element with children.
		buffer.WriteString("\n")

		for _, child := range element.Children {
			if err := writeElement(buffer, child, indent, level+1); err != nil {
				return err
			}
		}

		// Write indentation for closing tag.
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	// Write closing tag.
	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")

	return nil
}

// writeAttribute writes ` name="value"` with the value escaped.
func writeAttribute(buffer *bytes.Buffer, attr xml.Attr) {
	buffer.WriteString(" ")
	buffer.WriteString(attr.Name.Local)
	buffer.WriteString("=\"")
	buffer.WriteString(escapeXML(attr.Value))
	buffer.WriteString("\"")
}

// escapeXML escapes special characters for XML text and attribute values.
// Characters that are not legal in XML 1.0 are replaced with U+FFFD.
func escapeXML(s string) string {
	var buffer bytes.Buffer
	// EscapeText only fails when the writer fails; bytes.Buffer never does.
	_ = xml.EscapeText(&buffer, []byte(s))
	return buffer.String()
}
