package urdf_test

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/urdfsim/internal/urdf"
)

var _ = Describe("Parse", func() {
	It("captures tags, attributes, children and text in document order", func() {
		root, err := urdf.ParseFile(filepath.Join("testdata", "rover.urdf"))
		Expect(err).NotTo(HaveOccurred())

		Expect(root.Tag).To(Equal("robot"))
		Expect(root.Attributes.Value("name", "")).To(Equal("rover"))
		Expect(root.Text).To(BeEmpty())

		tags := make([]string, 0, len(root.Children))
		for _, c := range root.Children {
			tags = append(tags, c.Tag)
		}
		Expect(tags).To(Equal([]string{"link", "link", "joint", "gazebo"}))

		inertia := root.Children[0].FirstChild("inertial").FirstChild("inertia")
		Expect(inertia).NotTo(BeNil())
		Expect(inertia.Attributes.Keys()).To(Equal([]string{"ixx", "ixy", "ixz", "iyy", "iyz", "izz"}))

		material := root.Children[3].FirstChild("material")
		Expect(material.Text).To(Equal("Gazebo/Grey"))
	})

	It("keeps numeric attributes as strings", func() {
		root, err := urdf.ParseString(`<inertial><mass value=" 2.50 "/></inertial>`)
		Expect(err).NotTo(HaveOccurred())
		v, ok := root.FirstChild("mass").Attributes.Get("value")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(" 2.50 "))
	})

	It("stores only direct text, trimmed", func() {
		root, err := urdf.ParseString("<a>\n  head <b>inner</b> tail\n</a>")
		Expect(err).NotTo(HaveOccurred())
		Expect(root.Text).To(Equal("head  tail"))
		Expect(root.Children[0].Text).To(Equal("inner"))
	})

	It("omits whitespace-only text", func() {
		root, err := urdf.ParseString("<a>\n\t  <b/>\n</a>")
		Expect(err).NotTo(HaveOccurred())
		Expect(root.Text).To(BeEmpty())
	})

	It("drops namespace declarations and qualifies namespaced names", func() {
		root, err := urdf.ParseString(`<robot xmlns:xacro="http://ros.org/wiki/xacro" name="r"><xacro:property name="w" value="1"/></robot>`)
		Expect(err).NotTo(HaveOccurred())
		Expect(root.Attributes.Keys()).To(Equal([]string{"name"}))
		Expect(root.Children[0].Tag).To(Equal("{http://ros.org/wiki/xacro}property"))
	})

	It("is idempotent on identical input", func() {
		data, err := os.ReadFile(filepath.Join("testdata", "rover.urdf"))
		Expect(err).NotTo(HaveOccurred())

		first, err := urdf.ParseBytes(data)
		Expect(err).NotTo(HaveOccurred())
		second, err := urdf.ParseBytes(data)
		Expect(err).NotTo(HaveOccurred())

		Expect(cmp.Diff(first, second, cmpopts.EquateEmpty())).To(BeEmpty())
	})

	DescribeTable("rejects malformed documents",
		func(src string) {
			_, err := urdf.ParseString(src)
			Expect(err).To(HaveOccurred())
			var perr *urdf.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
		},
		Entry("unbalanced tags", `<robot><link name="a"></robot>`),
		Entry("unclosed root", `<robot><link name="a"/>`),
		Entry("invalid syntax", `<robot <link/></robot>`),
		Entry("empty document", ``),
		Entry("only whitespace", "  \n "),
		Entry("two roots", `<a/><b/>`),
		Entry("text outside root", `<a/>junk`),
		Entry("duplicate attribute", `<link name="a" name="b"/>`),
		Entry("unquoted attribute", `<link name=a/>`),
	)

	It("reports the sentinel for trailing elements", func() {
		_, err := urdf.ParseString(`<a/><b/>`)
		Expect(errors.Is(err, urdf.ErrMultipleRoots)).To(BeTrue())
	})

	It("reports unreadable files", func() {
		_, err := urdf.ParseFile(filepath.Join("testdata", "missing.urdf"))
		var perr *urdf.ParseError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
	})

	It("includes the line for syntax errors", func() {
		_, err := urdf.ParseString("<robot>\n<link>\n</robot>")
		var perr *urdf.ParseError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Line).To(BeNumerically(">", 0))
	})
})
