// Package sign verifica los certificados firmados externamente antes de
// aceptarlos en el expediente. Firma XML-DSig enveloped: SHA-256 sobre el
// documento canónico (C14N) y RSA PKCS#1 v1.5 sobre SignedInfo.
package sign

import (
	"bytes"
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"fmt"

	"github.com/beevik/etree"
	"github.com/onda-do/registro-api/internal/application/workflow"
	"github.com/ucarion/c14n"
)

// Verifier valida sobres XML-DSig enveloped.
type Verifier struct{}

// NewVerifier construye el verificador.
func NewVerifier() *Verifier { return &Verifier{} }

var _ workflow.SignatureVerifier = (*Verifier)(nil)

// Verify comprueba el sobre firmado: digest del documento (sin el nodo
// Signature, transformación enveloped) contra DigestValue, y firma RSA de
// SignedInfo contra el certificado X509 embebido. No valida cadena de
// confianza: la oficina registra los certificados autorizados por fuera.
func (v *Verifier) Verify(signedXML []byte) error {
	if len(signedXML) == 0 {
		return fmt.Errorf("sign: documento vacío")
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(signedXML); err != nil {
		return fmt.Errorf("sign: parsear XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return fmt.Errorf("sign: documento sin raíz")
	}

	sigEl := findByLocalTag(root, "Signature")
	if sigEl == nil {
		return fmt.Errorf("sign: no se encontró ds:Signature")
	}
	signedInfo := findByLocalTag(sigEl, "SignedInfo")
	if signedInfo == nil {
		return fmt.Errorf("sign: no se encontró ds:SignedInfo")
	}
	digestB64 := textOfDescendant(signedInfo, "DigestValue")
	if digestB64 == "" {
		return fmt.Errorf("sign: no se encontró ds:DigestValue")
	}
	sigValueB64 := textOfDescendant(sigEl, "SignatureValue")
	if sigValueB64 == "" {
		return fmt.Errorf("sign: no se encontró ds:SignatureValue")
	}
	certB64 := textOfDescendant(sigEl, "X509Certificate")
	if certB64 == "" {
		return fmt.Errorf("sign: no se encontró ds:X509Certificate")
	}

	// 1) Digest del documento sin la firma (transformación enveloped).
	stripped := doc.Copy()
	strippedRoot := stripped.Root()
	if sig := findByLocalTag(strippedRoot, "Signature"); sig != nil {
		strippedRoot.RemoveChild(sig)
	}
	strippedBytes, err := stripped.WriteToBytes()
	if err != nil {
		return fmt.Errorf("sign: serializar documento: %w", err)
	}
	canonicalDoc, err := canonicalizeXML(strippedBytes)
	if err != nil {
		canonicalDoc = strippedBytes
	}
	wantDigest, err := base64.StdEncoding.DecodeString(digestB64)
	if err != nil {
		return fmt.Errorf("sign: DigestValue inválido: %w", err)
	}
	gotDigest := sha256.Sum256(canonicalDoc)
	if !bytes.Equal(gotDigest[:], wantDigest) {
		return fmt.Errorf("sign: digest del documento no coincide")
	}

	// 2) Firma RSA sobre SignedInfo canónico.
	siDoc := etree.NewDocument()
	siDoc.SetRoot(signedInfo.Copy())
	siBytes, err := siDoc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("sign: serializar SignedInfo: %w", err)
	}
	canonicalSI, err := canonicalizeXML(siBytes)
	if err != nil {
		canonicalSI = siBytes
	}
	sigValue, err := base64.StdEncoding.DecodeString(sigValueB64)
	if err != nil {
		return fmt.Errorf("sign: SignatureValue inválido: %w", err)
	}
	certDER, err := base64.StdEncoding.DecodeString(certB64)
	if err != nil {
		return fmt.Errorf("sign: X509Certificate inválido: %w", err)
	}
	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return fmt.Errorf("sign: parsear certificado: %w", err)
	}
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return fmt.Errorf("sign: el certificado no tiene llave pública RSA")
	}
	siHash := sha256.Sum256(canonicalSI)
	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, siHash[:], sigValue); err != nil {
		return fmt.Errorf("sign: firma inválida: %w", err)
	}
	return nil
}

func canonicalizeXML(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

// findByLocalTag busca el primer descendiente cuyo tag local coincida,
// ignorando el prefijo de namespace (ds:, etc.).
func findByLocalTag(el *etree.Element, local string) *etree.Element {
	for _, child := range el.ChildElements() {
		if localTag(child.Tag) == local {
			return child
		}
		if found := findByLocalTag(child, local); found != nil {
			return found
		}
	}
	return nil
}

func textOfDescendant(el *etree.Element, local string) string {
	if found := findByLocalTag(el, local); found != nil {
		return found.Text()
	}
	return ""
}

func localTag(tag string) string {
	for i := len(tag) - 1; i >= 0; i-- {
		if tag[i] == ':' {
			return tag[i+1:]
		}
	}
	return tag
}
