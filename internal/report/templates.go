package report

const htmlSuccess = `<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 800px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #4CAF50; border-bottom: 2px solid #4CAF50; padding-bottom: 10px;">{{.Label}} backup succeeded ✅</h2>
  <p style="color: #666;">Checked at: {{.CheckedAt}}</p>
  <div style="background-color: #f9f9f9; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <h3 style="margin-top: 0; color: #333;">Backup details</h3>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd; width: 40%;"><strong>Archive name:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.ArchiveName}}</td></tr>
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;"><strong>Start time:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.StartTime}}</td></tr>
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;"><strong>End time:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.EndTime}}</td></tr>
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;"><strong>Duration:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.Duration}}</td></tr>
    </table>
  </div>
  <div style="background-color: #f9f9f9; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <h3 style="margin-top: 0; color: #333;">Storage</h3>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd; width: 40%;"><strong>Original size:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.OriginalSize}}</td></tr>
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;"><strong>Compressed size:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.CompressedSize}}</td></tr>
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;"><strong>Deduplicated size:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.DeduplicatedSize}}</td></tr>
      <tr><td style="padding: 8px; border-bottom: 1px solid #ddd;"><strong>Pruned data:</strong></td><td style="padding: 8px; border-bottom: 1px solid #ddd;">{{.Report.PrunedData}}</td></tr>
    </table>
  </div>
  <p style="color: #4CAF50; font-weight: bold;">The backup completed successfully.</p>
</div>
`

const htmlFailure = `<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 800px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #F44336; border-bottom: 2px solid #F44336; padding-bottom: 10px;">{{.Label}} backup failed ❌</h2>
  <p style="color: #666;">Checked at: {{.CheckedAt}}</p>
  <div style="background-color: #fff9f9; padding: 15px; border-radius: 5px; margin: 15px 0; border: 1px solid #ffcdd2;">
    <h3 style="margin-top: 0; color: #d32f2f;">Errors</h3>
    <pre style="background-color: #f8f8f8; padding: 10px; border-radius: 3px; overflow: auto; white-space: pre-wrap; word-wrap: break-word;">{{.Report.ErrorExcerpt}}</pre>
  </div>
  <div style="background-color: #f9f9f9; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <h3 style="margin-top: 0; color: #333;">Full log</h3>
    <pre style="background-color: #f8f8f8; padding: 10px; border-radius: 3px; overflow: auto; max-height: 300px; white-space: pre-wrap; word-wrap: break-word;">{{if .RawLog}}{{.RawLog}}{{else}}Full log unavailable{{end}}</pre>
  </div>
  <p style="color: #F44336; font-weight: bold;">Please check the backup system and fix the problem.</p>
</div>
`

const htmlUnknown = `<div style="font-family: Arial, sans-serif; padding: 20px; max-width: 800px; margin: 0 auto; border: 1px solid #e0e0e0; border-radius: 5px;">
  <h2 style="color: #FF9800; border-bottom: 2px solid #FF9800; padding-bottom: 10px;">{{.Label}} backup status unknown ⚠️</h2>
  <p style="color: #666;">Checked at: {{.CheckedAt}}</p>
  <p>The backup container log could not be read. Possible causes:</p>
  <ul>
{{- range .Causes}}
    <li>{{.}}</li>
{{- end}}
  </ul>
  <p style="color: #FF9800; font-weight: bold;">Please check the state of the backup system.</p>
</div>
`

const textSuccess = `Checked at: {{.CheckedAt}}

Archive name: {{.Report.ArchiveName}}
Start time: {{.Report.StartTime}}
End time: {{.Report.EndTime}}
Duration: {{.Report.Duration}}

Original size: {{.Report.OriginalSize}}
Compressed size: {{.Report.CompressedSize}}
Deduplicated size: {{.Report.DeduplicatedSize}}
Pruned data: {{.Report.PrunedData}}
`

const textFailure = "Checked at: {{.CheckedAt}}\n\n" +
	"Errors:\n```\n{{.Report.ErrorExcerpt}}\n```\n\n" +
	"Full log:\n```\n{{if .RawLog}}{{.RawLog}}{{else}}Full log unavailable{{end}}\n```\n"

const textUnknown = `Checked at: {{.CheckedAt}}

The backup container log could not be read. Possible causes:
{{- range .Causes}}
• {{.}}
{{- end}}
`
