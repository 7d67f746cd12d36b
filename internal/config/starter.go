package config

import (
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// DefaultHCL returns a starter configuration file holding the defaults.
func DefaultHCL() []byte {
	def := Default()
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	output := body.AppendNewBlock("output", nil).Body()
	output.SetAttributeValue("dir", cty.StringVal(def.Output.Dir))
	output.SetAttributeValue("name", cty.StringVal(def.Output.Name))

	body.AppendNewline()
	render := body.AppendNewBlock("render", nil).Body()
	render.SetAttributeValue("template_dir", cty.StringVal(""))
	render.SetAttributeValue("strict_json", cty.BoolVal(def.Render.StrictJSON))
	render.SetAttributeValue("max_parallel", cty.NumberIntVal(int64(def.Render.MaxParallel)))

	body.AppendNewline()
	pdf := body.AppendNewBlock("pdf", nil).Body()
	pdf.SetAttributeValue("enabled", cty.BoolVal(def.PDF.Enabled))
	pdf.SetAttributeValue("binary", cty.StringVal(def.PDF.Binary))
	pdf.SetAttributeValue("timeout", cty.StringVal(def.PDF.Timeout))
	pdf.SetAttributeValue("page_size", cty.StringVal(def.PDF.PageSize))
	pdf.SetAttributeValue("dpi", cty.NumberIntVal(int64(def.PDF.DPI)))
	pdf.SetAttributeValue("cover", cty.BoolVal(def.PDF.Cover))
	pdf.SetAttributeValue("extra_args", cty.ListValEmpty(cty.String))

	body.AppendNewline()
	log := body.AppendNewBlock("log", nil).Body()
	log.SetAttributeValue("level", cty.StringVal(def.Log.Level))
	log.SetAttributeValue("format", cty.StringVal(def.Log.Format))

	body.AppendNewline()
	server := body.AppendNewBlock("server", nil).Body()
	server.SetAttributeValue("addr", cty.StringVal(def.Server.Addr))
	server.SetAttributeValue("docs_dir", cty.StringVal(def.Server.DocsDir))

	return f.Bytes()
}
