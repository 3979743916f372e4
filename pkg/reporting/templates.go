/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: templates.go
Description: HTML template of the induction report.
*/

package reporting

// reportTemplate is the report page
const reportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Sequitur Report</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif;
            background: linear-gradient(135deg, #667eea 0%, #764ba2 100%);
            min-height: 100vh;
            color: #333;
        }

        .container {
            max-width: 1400px;
            margin: 0 auto;
            padding: 20px;
        }

        .header, .panel {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 20px;
            padding: 30px;
            margin-bottom: 30px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .header {
            text-align: center;
        }

        .header h1 {
            color: #4a5568;
            font-size: 2.5rem;
            margin-bottom: 10px;
        }

        .header p {
            color: #718096;
        }

        .stats-grid {
            display: grid;
            grid-template-columns: repeat(auto-fit, minmax(200px, 1fr));
            gap: 20px;
            margin-bottom: 30px;
        }

        .stat-card {
            background: rgba(255, 255, 255, 0.95);
            border-radius: 15px;
            padding: 25px;
            box-shadow: 0 8px 32px rgba(0, 0, 0, 0.1);
        }

        .stat-card .value {
            font-size: 2rem;
            font-weight: 700;
            color: #2d3748;
        }

        .stat-card .label {
            color: #718096;
            font-size: 0.9rem;
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }

        table {
            width: 100%;
            border-collapse: collapse;
        }

        th, td {
            text-align: left;
            padding: 8px 12px;
            border-bottom: 1px solid #e2e8f0;
            vertical-align: top;
        }

        code.terminal {
            background: #edf2f7;
            border-radius: 4px;
            padding: 1px 4px;
        }

        a.rule {
            color: #6b46c1;
            font-weight: 600;
            text-decoration: none;
        }

        .expansion {
            color: #4a5568;
            font-family: monospace;
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Title}}</h1>
            <p>Generated on {{.GeneratedAt.Format "January 2, 2006 at 3:04 PM"}} | Run: {{.RunID}}{{if .Version}} | Version: {{.Version}}{{end}}</p>
            {{if .Input}}<p>Input: {{.Input}}{{if .Tokenizer}} ({{.Tokenizer}}){{end}}</p>{{end}}
        </div>

        <div class="stats-grid">
            <div class="stat-card">
                <div class="value">{{.Stats.Tokens}}</div>
                <div class="label">Tokens</div>
            </div>
            <div class="stat-card">
                <div class="value">{{len .Rules}}</div>
                <div class="label">Rules</div>
            </div>
            <div class="stat-card">
                <div class="value">{{.Symbols}}</div>
                <div class="label">Symbols</div>
            </div>
            <div class="stat-card">
                <div class="value">{{printf "%.3f" .Compression}}</div>
                <div class="label">Symbols per Token</div>
            </div>
            <div class="stat-card">
                <div class="value">{{.Stats.RulesCreated}} / {{.Stats.RulesInlined}}</div>
                <div class="label">Rules Created / Inlined</div>
            </div>
            <div class="stat-card">
                <div class="value">{{.Stats.RestorePasses}}</div>
                <div class="label">Restore Passes</div>
            </div>
        </div>

        <div class="panel">
            <table>
                <thead>
                    <tr><th>Rule</th><th>Uses</th><th>Right-hand side</th><th>Expansion</th></tr>
                </thead>
                <tbody>
                {{range .Rules}}
                    <tr id="{{.Name}}">
                        <td>{{.Name}}</td>
                        <td>{{if .Index}}{{.RefCount}}{{end}}</td>
                        <td>{{range .RHS}}{{if .Rule}}<a class="rule" href="#{{.Rule}}">{{.Rule}}</a> {{else}}<code class="terminal">{{.Terminal}}</code> {{end}}{{end}}</td>
                        <td class="expansion">{{.Expansion}}{{if .Truncated}} ...{{end}}</td>
                    </tr>
                {{end}}
                </tbody>
            </table>
        </div>
    </div>
</body>
</html>
`
