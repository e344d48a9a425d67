package skill

// Dialogue texts. The skill speaks Russian; handler code stays
// English. Validation messages repeat the backend's wording so the
// voice and web flows stay consistent.
const (
	textGreeting = "Добро пожаловать в навык АйтиПлан"
	textHelp     = "Я умею записывать трудозатраты и рассказывать о задачах. " +
		"Скажите: укажи трудозатраты, мои задачи, отчет за день или трудозатраты по проекту"
	textCancel  = "Для продолжения произнесите любую команду"
	textThanks  = "Всегда рада помочь. Для продолжения назовите команду"
	textUnknown = "Я не поняла команду. Скажите помощь, чтобы узнать, что я умею"
	textRestart = "Я потеряла контекст разговора. Для продолжения назовите команду"

	textAskMinutes       = "Сколько часов вы хотите указать?"
	textAskTask          = "По какой задаче вы хотите указать трудозатраты?"
	textAskWorkType      = "Какой вид работ указать?"
	textAskDescription   = "Произнесите описание трудозатрат"
	textConfirmQuestion  = "Все верно?"
	textConfirmRetry     = "Скажите да или нет"
	textDescribeAgain    = "Произнесите описание еще раз"
	textWorktimeRecorded = "Трудозатраты успешно добавлены"

	textTaskRetry     = "Я не нашла такую задачу, повторите название"
	textWorkTypeRetry = "Я не нашла такой вид работ, повторите название"
	textProjectAsk    = "По какому проекту вы хотите узнать трудозатраты?"
	textProjectRetry  = "Я не нашла такой проект, повторите название"

	textNoTasks       = "У вас нет задач"
	textNoWorkTime    = "Записей трудозатрат за сегодня нет"
	textNothingMore   = "Больше ничего нет"
	textOverdueSuffix = "У вас просроченных задач: %d"

	textMinutesInvalid  = "Вы произнесли некорректные данные"
	textMinutesTooSmall = "время трудозатрат не может быть меньше 15 минут"
	textMinutesTooBig   = "время трудозатрат не может быть больше 4 часов"
	textMinutesNotStep  = "Трудозатраты должны быть кратны 15 минутам"
)

// Button titles double as spoken commands, so each one has a matching
// command route.
const (
	buttonNext     = "Далее"
	buttonYes      = "Да"
	buttonNo       = "Нет"
	buttonTasks    = "Мои задачи"
	buttonWorktime = "Укажи трудозатраты"
	buttonReport   = "Отчет за день"
	buttonProject  = "Трудозатраты по проекту"
	buttonHelp     = "Помощь"
)
