package get_bookable_slots

import "time"

// Request модель запроса на получение бронируемых слотов
type Request struct {
	ServiceID int64     // ID услуги
	Date      time.Time // Дата в календаре хоста (без времени)
}

// Response модель ответа со списком бронируемых слотов
type Response struct {
	ServiceID int64     // ID услуги
	HostID    int64     // ID хоста
	Date      time.Time // Дата, на которую запрашивались слоты
	Timezone  string    // Таймзона хоста, в которой резолвился день
	Slots     []Slot    // Список бронируемых слотов

	// Partial = true, когда внешний календарь был недоступен и занятость
	// собрана только из внутренних бронирований. Это аннотация результата,
	// а не ошибка: список слотов остаётся пригодным для бронирования.
	Partial bool
}

// Slot модель временного слота
type Slot struct {
	StartTime         time.Time // Начало слота (UTC)
	EndTime           time.Time // Конец слота (UTC)
	RemainingCapacity int       // Сколько мест осталось
	TotalCapacity     int       // Всего мест в слоте
}
