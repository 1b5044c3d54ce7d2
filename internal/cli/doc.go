// Package cli реализует инструмент командной строки Argus.
//
// # Обзор
//
// CLI работает в двух режимах:
//   - клиентском: управление graphs, runs и schedules через Argus API;
//   - локальном: команда review выполняет граф reviewers в текущем
//     процессе, без API и базы данных.
//
// # Ключевые компоненты
//
// ## Client
//
// HTTP-клиент для Argus API. Инкапсулирует все HTTP-запросы,
// парсинг ответов (DataResponse, ListResponse, ErrorResponse)
// и обработку ошибок.
//
//	client := cli.NewClient("http://localhost:8080")
//	graphs, err := client.ListGraphs()
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: argus graph list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - graph: list, create, show, update, delete, versions, publish, validate
//   - run: list, start, show, report, findings
//   - schedule: list, create, show, delete, enable, disable
//   - review: локальный запуск графа против цели
//
// Каждая группа создаётся через фабричную функцию (NewGraphCmd и т.д.),
// принимающую clientFn и outputFn — замыкания для ленивого создания
// Client и Output после парсинга PersistentFlags.
//
// Команда review возвращает ErrSeverityThreshold, если с флагом
// --fail-on найдены findings с серьёзностью не ниже порога; main
// транслирует её в код выхода 2.
package cli
