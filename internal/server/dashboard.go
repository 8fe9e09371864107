package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>FraudLens</title>
    <meta name="description" content="Transaction fraud analytics dashboard">
    <link rel="icon" href="data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'><text y='.9em' font-size='90'>◎</text></svg>">
    <script src="https://cdn.jsdelivr.net/npm/chart.js@4.4.1/dist/chart.umd.min.js"></script>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }

        :root {
            --bg: #09090b;
            --bg-subtle: #18181b;
            --border: #27272a;
            --text: #fafafa;
            --text-secondary: #a1a1aa;
            --text-tertiary: #52525b;
            --accent: #22c55e;
            --accent-dim: rgba(34, 197, 94, 0.1);
            --red: #ef4444;
            --red-dim: rgba(239, 68, 68, 0.1);
            --amber: #f59e0b;
            --amber-dim: rgba(245, 158, 11, 0.1);
            --blue: #3b82f6;
        }

        body {
            font-family: -apple-system, 'Segoe UI', Roboto, Helvetica, sans-serif;
            background: var(--bg);
            color: var(--text);
            min-height: 100vh;
            font-size: 14px;
            line-height: 1.5;
            -webkit-font-smoothing: antialiased;
        }

        .mono {
            font-family: ui-monospace, 'SF Mono', Menlo, monospace;
        }

        .container {
            max-width: 1320px;
            margin: 0 auto;
            padding: 0 24px;
        }

        header {
            border-bottom: 1px solid var(--border);
            padding: 16px 0;
            position: sticky;
            top: 0;
            background: var(--bg);
            z-index: 100;
        }

        .header-inner {
            display: flex;
            justify-content: space-between;
            align-items: center;
        }

        .logo {
            display: flex;
            align-items: center;
            gap: 10px;
            font-weight: 600;
            font-size: 15px;
        }

        .logo-dot {
            width: 10px;
            height: 10px;
            border-radius: 50%;
            background: var(--red);
            box-shadow: 0 0 12px var(--red);
        }

        .header-actions {
            display: flex;
            align-items: center;
            gap: 12px;
        }

        .source-pill {
            font-size: 12px;
            color: var(--text-secondary);
            border: 1px solid var(--border);
            border-radius: 999px;
            padding: 4px 12px;
        }

        button, .btn {
            background: var(--bg-subtle);
            color: var(--text);
            border: 1px solid var(--border);
            border-radius: 6px;
            padding: 7px 14px;
            font-size: 13px;
            cursor: pointer;
            text-decoration: none;
            transition: border-color 0.15s;
        }

        button:hover, .btn:hover { border-color: var(--text-tertiary); }
        button:disabled { opacity: 0.4; cursor: default; }
        button.primary { background: var(--accent-dim); border-color: var(--accent); }

        .metrics {
            display: grid;
            grid-template-columns: repeat(4, 1fr);
            gap: 16px;
            padding: 32px 0;
        }

        .metric {
            border: 1px solid var(--border);
            border-radius: 10px;
            padding: 20px;
            background: var(--bg-subtle);
        }

        .metric-label {
            font-size: 12px;
            color: var(--text-secondary);
            text-transform: uppercase;
            letter-spacing: 0.05em;
        }

        .metric-value {
            font-size: 28px;
            font-weight: 600;
            margin-top: 6px;
        }

        .metric-value.red { color: var(--red); }
        .metric-value.green { color: var(--accent); }

        section { padding: 24px 0; border-top: 1px solid var(--border); }

        h2 {
            font-size: 15px;
            font-weight: 600;
            margin-bottom: 16px;
        }

        .charts {
            display: grid;
            grid-template-columns: repeat(2, 1fr);
            gap: 16px;
        }

        .chart-card {
            border: 1px solid var(--border);
            border-radius: 10px;
            padding: 16px;
            background: var(--bg-subtle);
        }

        .chart-card h3 {
            font-size: 13px;
            color: var(--text-secondary);
            font-weight: 500;
            margin-bottom: 12px;
        }

        .chart-card canvas { max-height: 240px; }

        .toolbar {
            display: flex;
            gap: 12px;
            align-items: center;
            margin-bottom: 16px;
            flex-wrap: wrap;
        }

        input, select {
            background: var(--bg);
            color: var(--text);
            border: 1px solid var(--border);
            border-radius: 6px;
            padding: 7px 10px;
            font-size: 13px;
        }

        input:focus, select:focus { outline: none; border-color: var(--blue); }

        table {
            width: 100%;
            border-collapse: collapse;
            font-size: 13px;
        }

        th {
            text-align: left;
            color: var(--text-tertiary);
            font-weight: 500;
            padding: 8px 12px;
            border-bottom: 1px solid var(--border);
            text-transform: uppercase;
            font-size: 11px;
            letter-spacing: 0.05em;
        }

        td {
            padding: 8px 12px;
            border-bottom: 1px solid var(--border);
            color: var(--text-secondary);
        }

        tr:hover td { background: var(--bg-subtle); }

        .badge {
            display: inline-block;
            padding: 2px 8px;
            border-radius: 999px;
            font-size: 11px;
            font-weight: 600;
        }

        .badge.fraud { background: var(--red-dim); color: var(--red); }
        .badge.legit { background: var(--accent-dim); color: var(--accent); }

        .pager {
            display: flex;
            gap: 12px;
            align-items: center;
            margin-top: 12px;
            font-size: 13px;
            color: var(--text-secondary);
        }

        .analyze-grid {
            display: grid;
            grid-template-columns: 1fr 1fr;
            gap: 16px;
        }

        .panel {
            border: 1px solid var(--border);
            border-radius: 10px;
            padding: 20px;
            background: var(--bg-subtle);
        }

        .panel form { display: flex; flex-direction: column; gap: 10px; }

        .result {
            margin-top: 14px;
            padding: 14px;
            border-radius: 8px;
            border: 1px solid var(--border);
            display: none;
        }

        .result .risk { font-size: 18px; font-weight: 600; }
        .result.HIGH, .result.ERROR { border-color: var(--red); background: var(--red-dim); }
        .result.HIGH .risk, .result.ERROR .risk { color: var(--red); }
        .result.MEDIUM { border-color: var(--amber); background: var(--amber-dim); }
        .result.MEDIUM .risk { color: var(--amber); }
        .result.LOW { border-color: var(--accent); background: var(--accent-dim); }
        .result.LOW .risk { color: var(--accent); }
        .result.UNKNOWN { border-color: var(--border); }
        .result .detail { color: var(--text-secondary); font-size: 12px; margin-top: 4px; }

        .history-item, .event-item {
            display: flex;
            justify-content: space-between;
            gap: 8px;
            padding: 8px 0;
            border-bottom: 1px solid var(--border);
            font-size: 12px;
            color: var(--text-secondary);
        }

        .reports-bar { display: flex; gap: 10px; flex-wrap: wrap; margin-bottom: 12px; }

        pre#report-output {
            background: var(--bg);
            border: 1px solid var(--border);
            border-radius: 8px;
            padding: 14px;
            font-size: 12px;
            color: var(--text-secondary);
            overflow-x: auto;
            max-height: 320px;
            display: none;
        }

        .live-dot {
            display: inline-block;
            width: 7px;
            height: 7px;
            border-radius: 50%;
            background: var(--text-tertiary);
            margin-right: 6px;
        }

        .live-dot.on { background: var(--accent); box-shadow: 0 0 8px var(--accent); }

        footer {
            border-top: 1px solid var(--border);
            padding: 20px 0;
            color: var(--text-tertiary);
            font-size: 12px;
            display: flex;
            justify-content: space-between;
        }

        @media (max-width: 900px) {
            .metrics, .charts, .analyze-grid { grid-template-columns: 1fr; }
        }
    </style>
</head>
<body>
    <header>
        <div class="container header-inner">
            <div class="logo"><span class="logo-dot"></span> FraudLens</div>
            <div class="header-actions">
                <span class="source-pill" id="source">All Data Combined</span>
                <button id="refresh-btn">Switch Dataset</button>
                <a class="btn" href="/api/export">Export CSV</a>
            </div>
        </div>
    </header>

    <main class="container">
        <div class="metrics">
            <div class="metric">
                <div class="metric-label">Total Transactions</div>
                <div class="metric-value" id="m-total">–</div>
            </div>
            <div class="metric">
                <div class="metric-label">Fraudulent</div>
                <div class="metric-value red" id="m-fraud">–</div>
            </div>
            <div class="metric">
                <div class="metric-label">Legitimate</div>
                <div class="metric-value green" id="m-legit">–</div>
            </div>
            <div class="metric">
                <div class="metric-label">Fraud Rate</div>
                <div class="metric-value" id="m-rate">–</div>
            </div>
        </div>

        <section>
            <h2>Charts</h2>
            <div class="charts">
                <div class="chart-card">
                    <h3>Fraud Distribution</h3>
                    <canvas id="chart-fraud"></canvas>
                </div>
                <div class="chart-card">
                    <h3>Amount Distribution</h3>
                    <canvas id="chart-amount"></canvas>
                </div>
                <div class="chart-card">
                    <h3>Fraud by Transaction Type</h3>
                    <canvas id="chart-type"></canvas>
                </div>
                <div class="chart-card">
                    <h3>Top Risk Locations</h3>
                    <canvas id="chart-location"></canvas>
                </div>
            </div>
        </section>

        <section>
            <h2>Transactions</h2>
            <div class="toolbar">
                <input type="search" id="search-input" placeholder="Search location, type, or amount" size="34">
                <span id="search-note" style="color: var(--text-tertiary); font-size: 12px;"></span>
            </div>
            <table>
                <thead>
                    <tr>
                        <th>ID</th>
                        <th>Timestamp</th>
                        <th>Amount</th>
                        <th>Type</th>
                        <th>Location</th>
                        <th>Status</th>
                        <th>Probability</th>
                    </tr>
                </thead>
                <tbody id="tx-body"></tbody>
            </table>
            <div class="pager">
                <button id="prev-btn">Prev</button>
                <span id="page-label">Page 1</span>
                <button id="next-btn">Next</button>
            </div>
        </section>

        <section>
            <div class="analyze-grid">
                <div class="panel">
                    <h2>Analyze a Transaction</h2>
                    <form id="analyze-form">
                        <input type="text" id="an-amount" placeholder="Amount (e.g. 4500)">
                        <select id="an-type">
                            <option value="">Transaction type…</option>
                            <option value="purchase">Purchase</option>
                            <option value="transfer">Transfer</option>
                            <option value="withdrawal">Withdrawal</option>
                            <option value="payment">Payment</option>
                        </select>
                        <input type="text" id="an-location" placeholder="Location (e.g. New York)">
                        <button type="submit" class="primary">Analyze</button>
                    </form>
                    <div class="result" id="an-result">
                        <div class="risk" id="an-risk"></div>
                        <div class="detail" id="an-detail"></div>
                    </div>
                </div>
                <div class="panel">
                    <h2>Recent Assessments</h2>
                    <div id="history-list"></div>
                </div>
            </div>
        </section>

        <section>
            <h2>Reports</h2>
            <div class="reports-bar">
                <button data-report="summary">Summary</button>
                <button data-report="geographic">Geographic</button>
                <button data-report="time-analysis">Time Analysis</button>
                <button data-report="user-behavior">User Behavior</button>
            </div>
            <pre id="report-output" class="mono"></pre>
        </section>

        <section>
            <h2><span class="live-dot" id="ws-dot"></span>Live Events</h2>
            <div id="event-list"></div>
        </section>
    </main>

    <footer>
        <div class="container" style="display: flex; justify-content: space-between;">
            <span>FraudLens</span>
            <span><a href="/metrics" style="color: var(--text-tertiary);">metrics</a></span>
        </div>
    </footer>

    <script>
        const state = { page: 1, perPage: 10, charts: {}, searching: false };

        const palette = ['#22c55e', '#ef4444', '#3b82f6', '#f59e0b', '#a855f7', '#14b8a6'];

        async function safeFetch(url, opts) {
            try {
                const res = await fetch(url, opts);
                if (!res.ok) return null;
                return await res.json();
            } catch (err) {
                console.error('fetch failed:', url, err);
                return null;
            }
        }

        function fmtAmount(v) {
            return '$' + Number(v).toLocaleString(undefined, { maximumFractionDigits: 2 });
        }

        async function loadStats() {
            const stats = await safeFetch('/api/stats');
            if (!stats) return;
            document.getElementById('m-total').textContent = stats.total_transactions.toLocaleString();
            document.getElementById('m-fraud').textContent = stats.fraudulent_transactions.toLocaleString();
            document.getElementById('m-legit').textContent = stats.legitimate_transactions.toLocaleString();
            document.getElementById('m-rate').textContent = stats.fraud_rate.toFixed(2) + '%';
        }

        function renderChart(canvasId, type, data, opts) {
            if (state.charts[canvasId]) state.charts[canvasId].destroy();
            const ctx = document.getElementById(canvasId);
            state.charts[canvasId] = new Chart(ctx, {
                type: type,
                data: data,
                options: Object.assign({
                    responsive: true,
                    plugins: { legend: { display: type === 'doughnut', labels: { color: '#a1a1aa' } } },
                    scales: type === 'doughnut' ? {} : {
                        x: { ticks: { color: '#a1a1aa' }, grid: { color: '#27272a' } },
                        y: { ticks: { color: '#a1a1aa' }, grid: { color: '#27272a' } }
                    }
                }, opts || {})
            });
        }

        async function loadCharts() {
            const [fraud, amount, byType, location] = await Promise.all([
                safeFetch('/api/chart/fraud-distribution'),
                safeFetch('/api/chart/amount-distribution'),
                safeFetch('/api/chart/transaction-type'),
                safeFetch('/api/chart/location-risk')
            ]);

            if (fraud) {
                renderChart('chart-fraud', 'doughnut', {
                    labels: fraud.labels,
                    datasets: [{ data: fraud.data, backgroundColor: ['#22c55e', '#ef4444'], borderWidth: 0 }]
                });
            }
            if (amount) {
                renderChart('chart-amount', 'bar', {
                    labels: amount.labels,
                    datasets: [{ data: amount.data, backgroundColor: '#3b82f6', borderRadius: 4 }]
                });
            }
            if (byType) {
                renderChart('chart-type', 'bar', {
                    labels: byType.labels,
                    datasets: [{ data: byType.data, backgroundColor: '#f59e0b', borderRadius: 4 }]
                });
            }
            if (location) {
                renderChart('chart-location', 'bar', {
                    labels: location.labels,
                    datasets: [{ data: location.data, backgroundColor: '#ef4444', borderRadius: 4 }]
                });
            }
        }

        function renderRows(rows) {
            const body = document.getElementById('tx-body');
            body.innerHTML = '';
            rows.forEach(tx => {
                const tr = document.createElement('tr');
                const status = tx.is_fraud === 1
                    ? '<span class="badge fraud">FRAUD</span>'
                    : '<span class="badge legit">OK</span>';
                tr.innerHTML =
                    '<td class="mono">' + tx.id + '</td>' +
                    '<td class="mono">' + tx.timestamp + '</td>' +
                    '<td>' + fmtAmount(tx.amount) + '</td>' +
                    '<td>' + tx.transaction_type + '</td>' +
                    '<td>' + tx.location + '</td>' +
                    '<td>' + status + '</td>' +
                    '<td class="mono">' + (tx.fraud_probability * 100).toFixed(1) + '%</td>';
                body.appendChild(tr);
            });
        }

        async function loadTransactions(page) {
            const data = await safeFetch('/api/transactions?page=' + page + '&per_page=' + state.perPage);
            if (!data) return;
            state.page = page;
            renderRows(data.transactions);
            document.getElementById('page-label').textContent = 'Page ' + page + ' / ' + data.total_pages;
            document.getElementById('prev-btn').disabled = page <= 1;
            document.getElementById('next-btn').disabled = page >= data.total_pages;
        }

        async function runSearch(q) {
            if (!q) {
                state.searching = false;
                document.getElementById('search-note').textContent = '';
                loadTransactions(1);
                return;
            }
            const results = await safeFetch('/api/search?q=' + encodeURIComponent(q));
            if (!results) return;
            state.searching = true;
            renderRows(results);
            document.getElementById('search-note').textContent = results.length + ' match(es), first 20 shown';
        }

        async function loadHistory() {
            const data = await safeFetch('/api/history?limit=8');
            const list = document.getElementById('history-list');
            list.innerHTML = '';
            if (!data || !data.assessments.length) {
                list.innerHTML = '<div class="history-item">No assessments yet</div>';
                return;
            }
            data.assessments.forEach(a => {
                const div = document.createElement('div');
                div.className = 'history-item';
                div.innerHTML =
                    '<span>' + fmtAmount(a.amount) + ' · ' + a.transaction_type + ' · ' + a.location + '</span>' +
                    '<span class="mono">' + a.risk_level + ' ' + (a.fraud_probability * 100).toFixed(0) + '%</span>';
                list.appendChild(div);
            });
        }

        async function analyze(e) {
            e.preventDefault();
            const body = {};
            const amount = document.getElementById('an-amount').value.trim();
            if (amount !== '') {
                const n = Number(amount);
                body.amount = Number.isFinite(n) ? n : amount;
            }
            const type = document.getElementById('an-type').value;
            if (type) body.transaction_type = type;
            const loc = document.getElementById('an-location').value.trim();
            if (loc) body.location = loc;

            const result = await safeFetch('/api/analyze', {
                method: 'POST',
                headers: { 'Content-Type': 'application/json' },
                body: JSON.stringify(body)
            });
            if (!result) return;

            const box = document.getElementById('an-result');
            box.className = 'result ' + result.risk_level;
            box.style.display = 'block';
            document.getElementById('an-risk').textContent =
                result.risk_level + ' · ' + result.recommendation;
            document.getElementById('an-detail').textContent = result.error
                ? result.error
                : 'Fraud probability ' + (result.fraud_probability * 100).toFixed(1) + '%';
            loadHistory();
        }

        async function refreshData() {
            const btn = document.getElementById('refresh-btn');
            btn.disabled = true;
            const res = await safeFetch('/api/refresh', { method: 'POST' });
            btn.disabled = false;
            if (!res) return;
            document.getElementById('source').textContent = res.source + ' (' + res.count + ' rows)';
            loadStats();
            loadCharts();
            loadTransactions(1);
        }

        async function runReport(name) {
            const data = await safeFetch('/api/report/' + name, { method: 'POST' });
            const out = document.getElementById('report-output');
            out.style.display = 'block';
            out.textContent = data ? JSON.stringify(data, null, 2) : 'report failed';
        }

        function pushEvent(text) {
            const list = document.getElementById('event-list');
            const div = document.createElement('div');
            div.className = 'event-item';
            div.innerHTML = '<span>' + text + '</span><span class="mono">' +
                new Date().toLocaleTimeString() + '</span>';
            list.prepend(div);
            while (list.children.length > 30) list.removeChild(list.lastChild);
        }

        function connectWS() {
            const proto = location.protocol === 'https:' ? 'wss' : 'ws';
            const ws = new WebSocket(proto + '://' + location.host + '/ws');
            const dot = document.getElementById('ws-dot');

            ws.onopen = () => { dot.classList.add('on'); };
            ws.onclose = () => {
                dot.classList.remove('on');
                setTimeout(connectWS, 3000);
            };
            ws.onmessage = (msg) => {
                let ev;
                try { ev = JSON.parse(msg.data); } catch { return; }
                if (ev.type === 'dataset_switched') {
                    pushEvent('Dataset switched to ' + ev.data.source + ' (' + ev.data.count + ' rows)');
                } else if (ev.type === 'model_trained') {
                    pushEvent('Model trained on ' + ev.data.rows + ' rows, fraud rate ' + ev.data.fraud_rate + '%');
                    loadStats();
                    loadCharts();
                } else if (ev.type === 'analysis_completed') {
                    pushEvent('Analysis: ' + ev.data.risk_level + ' (' +
                        (ev.data.fraud_probability * 100).toFixed(1) + '%)');
                } else if (ev.type === 'catalog_changed') {
                    const added = ev.data.added || [];
                    const removed = ev.data.removed || [];
                    const parts = [];
                    if (added.length) parts.push('added ' + added.join(', '));
                    if (removed.length) parts.push('removed ' + removed.join(', '));
                    pushEvent('Data directory ' + parts.join('; ') +
                        ' (' + ev.data.total + ' file' + (ev.data.total === 1 ? '' : 's') + ')');
                } else {
                    pushEvent(ev.type);
                }
            };
        }

        document.getElementById('refresh-btn').addEventListener('click', refreshData);
        document.getElementById('analyze-form').addEventListener('submit', analyze);
        document.getElementById('prev-btn').addEventListener('click', () => loadTransactions(state.page - 1));
        document.getElementById('next-btn').addEventListener('click', () => loadTransactions(state.page + 1));
        document.querySelectorAll('[data-report]').forEach(btn =>
            btn.addEventListener('click', () => runReport(btn.dataset.report)));

        let searchTimer;
        document.getElementById('search-input').addEventListener('input', (e) => {
            clearTimeout(searchTimer);
            searchTimer = setTimeout(() => runSearch(e.target.value.trim()), 250);
        });

        async function loadSource() {
            const data = await safeFetch('/api/datasets');
            if (data && data.current) {
                document.getElementById('source').textContent = data.current.source;
            }
        }

        loadStats();
        loadCharts();
        loadTransactions(1);
        loadHistory();
        loadSource();
        connectWS();
    </script>
</body>
</html>`

// dashboardPageHandler serves the embedded dashboard page
func dashboardPageHandler(c *gin.Context) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, dashboardHTML)
}
