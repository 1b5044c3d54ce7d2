// Package analyzer содержит внешние вызовы анализа.
//
// Каждый reviewer ссылается на стратегию анализа (command, http, static),
// которая выполняется как непрозрачный вызов: executor передаёт target
// и конфигурацию, получает findings или ошибку. Содержимое анализа —
// не забота Argus; engine и aggregate стратегию не инспектируют.
package analyzer
