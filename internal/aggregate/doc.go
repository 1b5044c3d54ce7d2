// Package aggregate собирает findings всех завершившихся задач
// в единый дедуплицированный и отсортированный список.
//
// Агрегатор — единственный владелец findings после их передачи:
// никакой другой компонент не мутирует finding после создания.
package aggregate
