package sign_test

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/xml"
	"math/big"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ucarion/c14n"

	"github.com/onda-do/registro-api/internal/infrastructure/sign"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: llave + certificado autofirmado y firmador de sobres para los tests
// ──────────────────────────────────────────────────────────────────────────────

func genKeyAndCert(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Firmante de Pruebas"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	return key, der
}

// canonOrRaw replica la canonicalización del verificador, con el mismo
// fallback a bytes crudos.
func canonOrRaw(data []byte) []byte {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	out, err := c14n.Canonicalize(dec)
	if err != nil {
		return data
	}
	return out
}

// buildSignedDoc arma un certificado con firma enveloped válida: digest SHA-256
// del documento sin firma, RSA PKCS#1 v1.5 sobre SignedInfo canónico.
func buildSignedDoc(t *testing.T) []byte {
	t.Helper()
	key, certDER := genKeyAndCert(t)

	doc := etree.NewDocument()
	root := doc.CreateElement("Certificado")
	root.CreateElement("NumeroRegistro").SetText("OBRA-2025-0001")
	root.CreateElement("Titular").SetText("Juan Pérez")
	root.CreateElement("Obra").SetText("Canción del Río")

	plain, err := doc.WriteToBytes()
	require.NoError(t, err)
	digest := sha256.Sum256(canonOrRaw(plain))

	sig := root.CreateElement("Signature")
	sig.CreateAttr("xmlns", "http://www.w3.org/2000/09/xmldsig#")
	si := sig.CreateElement("SignedInfo")
	si.CreateElement("CanonicalizationMethod").
		CreateAttr("Algorithm", "http://www.w3.org/TR/2001/REC-xml-c14n-20010315")
	si.CreateElement("SignatureMethod").
		CreateAttr("Algorithm", "http://www.w3.org/2001/04/xmldsig-more#rsa-sha256")
	ref := si.CreateElement("Reference")
	ref.CreateAttr("URI", "")
	ref.CreateElement("DigestMethod").
		CreateAttr("Algorithm", "http://www.w3.org/2001/04/xmlenc#sha256")
	ref.CreateElement("DigestValue").SetText(base64.StdEncoding.EncodeToString(digest[:]))

	// SignedInfo se serializa igual que lo hará el verificador: copia como raíz.
	siDoc := etree.NewDocument()
	siDoc.SetRoot(si.Copy())
	siBytes, err := siDoc.WriteToBytes()
	require.NoError(t, err)
	siHash := sha256.Sum256(canonOrRaw(siBytes))
	sigValue, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA256, siHash[:])
	require.NoError(t, err)

	sig.CreateElement("SignatureValue").SetText(base64.StdEncoding.EncodeToString(sigValue))
	sig.CreateElement("KeyInfo").
		CreateElement("X509Data").
		CreateElement("X509Certificate").SetText(base64.StdEncoding.EncodeToString(certDER))

	out, err := doc.WriteToBytes()
	require.NoError(t, err)
	return out
}

// mutateSigned parsea el sobre firmado, aplica la mutación y lo reserializa.
func mutateSigned(t *testing.T, signedXML []byte, mutate func(doc *etree.Document)) []byte {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(signedXML))
	mutate(doc)
	out, err := doc.WriteToBytes()
	require.NoError(t, err)
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests Verify
// ──────────────────────────────────────────────────────────────────────────────

func TestVerify_SobreValido(t *testing.T) {
	v := sign.NewVerifier()
	assert.NoError(t, v.Verify(buildSignedDoc(t)),
		"un sobre bien firmado debe aceptarse")
}

func TestVerify_ContenidoAlterado(t *testing.T) {
	v := sign.NewVerifier()
	alterado := mutateSigned(t, buildSignedDoc(t), func(doc *etree.Document) {
		doc.Root().SelectElement("Titular").SetText("Otro Titular")
	})
	err := v.Verify(alterado)
	require.Error(t, err, "contenido alterado tras la firma debe rechazarse")
	assert.Contains(t, err.Error(), "digest")
}

func TestVerify_FirmaAlterada(t *testing.T) {
	v := sign.NewVerifier()
	falso := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0xAB}, 256))
	alterado := mutateSigned(t, buildSignedDoc(t), func(doc *etree.Document) {
		for _, el := range doc.Root().FindElements("//SignatureValue") {
			el.SetText(falso)
		}
	})
	err := v.Verify(alterado)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firma")
}

func TestVerify_FirmaDeOtraLlave(t *testing.T) {
	// El certificado embebido se reemplaza por uno de otra llave: el digest
	// coincide pero la firma no corresponde a la llave pública.
	v := sign.NewVerifier()
	_, otroCert := genKeyAndCert(t)
	alterado := mutateSigned(t, buildSignedDoc(t), func(doc *etree.Document) {
		for _, el := range doc.Root().FindElements("//X509Certificate") {
			el.SetText(base64.StdEncoding.EncodeToString(otroCert))
		}
	})
	assert.Error(t, v.Verify(alterado))
}

func TestVerify_SinFirma(t *testing.T) {
	v := sign.NewVerifier()
	err := v.Verify([]byte(`<Certificado><NumeroRegistro>OBRA-2025-0001</NumeroRegistro></Certificado>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Signature")
}

func TestVerify_DocumentoVacioOMalformado(t *testing.T) {
	v := sign.NewVerifier()
	assert.Error(t, v.Verify(nil))
	assert.Error(t, v.Verify([]byte("esto no es XML <<<")))
}

func TestVerify_DigestNoBase64(t *testing.T) {
	v := sign.NewVerifier()
	alterado := mutateSigned(t, buildSignedDoc(t), func(doc *etree.Document) {
		for _, el := range doc.Root().FindElements("//DigestValue") {
			el.SetText("@@no-es-base64@@")
		}
	})
	assert.Error(t, v.Verify(alterado))
}
